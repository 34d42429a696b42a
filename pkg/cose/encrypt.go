package cose

import "github.com/fxamacker/cbor/v2"

// EncryptMessage is the decoded form of a COSE_Encrypt structure
// (RFC 9052 §5.1): [protected, unprotected, ciphertext, recipients].
type EncryptMessage struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Ciphertext  []byte
	Recipients  []RecipientStructure
	Head        *Param
}

// Encrypt builds a COSE_Encrypt message: a fresh CEK seals the plaintext
// under alg, and is then wrapped once per entry in recipients, generalizing
// Encrypt0 to the full recipient tree.
func Encrypt(adapter Adapter, alg ContentAlg, recipients []RecipientEncoder, plaintext []byte, extra *Param, opts Options) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, newErr(KindWrongArity, "Encrypt", nil)
	}
	keyLen := contentKeyLen(alg)
	nonceLen := nonceLenFor(alg)
	if keyLen == 0 || nonceLen == 0 {
		return nil, newErr(KindUnsupportedEncryptionAlgorithm, "Encrypt", nil)
	}
	cek, err := adapter.GetRandom(keyLen)
	if err != nil {
		return nil, err
	}
	iv, err := adapter.GetRandom(nonceLen)
	if err != nil {
		return nil, err
	}

	head := Append(Append(
		NewIntParam(IntLabel(LabelAlg), int64(alg), true),
		NewBytesParam(IntLabel(LabelIV), iv, false),
	), extra)
	protected, unprotected, err := EncodeHeaders(head)
	if err != nil {
		return nil, err
	}
	encStructure, err := BuildEncStructure(ContextEncrypt, protected, opts.ExternalAAD)
	if err != nil {
		return nil, err
	}
	ciphertext, err := adapter.AEADEncrypt(alg, cek, iv, encStructure, plaintext)
	if err != nil {
		return nil, err
	}

	recipElems := make([]interface{}, len(recipients))
	for i, r := range recipients {
		elem, err := EncodeRecipient(adapter, r, cek)
		if err != nil {
			return nil, err
		}
		recipElems[i] = elem
	}

	body, err := canonMarshal([]interface{}{protected, unprotected, ciphertext, recipElems})
	if err != nil {
		return nil, newErr(KindFormat, "Encrypt", err)
	}
	return wrapTag(TagEncrypt, body, opts)
}

// DecodeEncrypt parses a COSE_Encrypt message without attempting any
// recipient unwrapping or decryption.
func DecodeEncrypt(message []byte, opts Options) (*EncryptMessage, error) {
	body, err := unwrapTag(TagEncrypt, message, opts)
	if err != nil {
		return nil, err
	}
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeEncrypt", err)
	}
	if len(raw) != 4 {
		return nil, newErr(KindWrongArity, "DecodeEncrypt", nil)
	}
	var protected []byte
	if err := cbor.Unmarshal(raw[0], &protected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
	}
	var unprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &unprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
	}
	var ciphertext []byte
	if err := cbor.Unmarshal(raw[2], &ciphertext); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
	}
	var rawRecips []cbor.RawMessage
	if err := cbor.Unmarshal(raw[3], &rawRecips); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
	}
	if len(rawRecips) == 0 {
		return nil, newErr(KindWrongArity, "DecodeEncrypt", nil)
	}

	head, err := DecodeHeaders(protected, unprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}

	recips := make([]RecipientStructure, len(rawRecips))
	for i, rr := range rawRecips {
		var elem []cbor.RawMessage
		if err := cbor.Unmarshal(rr, &elem); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
		}
		if len(elem) != 3 {
			return nil, newErr(KindWrongArity, "DecodeEncrypt", nil)
		}
		var rp []byte
		if err := cbor.Unmarshal(elem[0], &rp); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
		}
		var ru map[interface{}]interface{}
		if err := cbor.Unmarshal(elem[1], &ru); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
		}
		var rc []byte
		if err := cbor.Unmarshal(elem[2], &rc); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeEncrypt", err)
		}
		rs, err := DecodeRecipientRaw(rp, ru, rc, opts.pool(), !opts.NoCritCheck)
		if err != nil {
			return nil, err
		}
		recips[i] = *rs
	}

	return &EncryptMessage{
		Protected:   protected,
		Unprotected: unprotected,
		Ciphertext:  ciphertext,
		Recipients:  recips,
		Head:        head,
	}, nil
}

// Decrypt decodes a COSE_Encrypt message, recovers the CEK from the first
// matching recipient decoder, and opens the ciphertext. Soft recipient
// errors (unsupported algorithm, kid mismatch) fall through to the next
// decoder.
func Decrypt(adapter Adapter, decoders []RecipientDecoder, message []byte, opts Options) ([]byte, *EncryptMessage, error) {
	msg, err := DecodeEncrypt(message, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.DecodeOnly {
		return nil, msg, nil
	}
	algNode := Find(msg.Head, IntLabel(LabelAlg))
	if algNode == nil {
		return nil, nil, newErr(KindAlgorithmMissing, "Decrypt", nil)
	}
	ivNode := Find(msg.Head, IntLabel(LabelIV))
	if ivNode == nil {
		return nil, nil, newErr(KindFormat, "Decrypt", nil)
	}

	var lastErr error = newErr(KindDecline, "Decrypt", nil)
	for _, rs := range msg.Recipients {
		rAlgNode := Find(rs.Head, IntLabel(LabelAlg))
		if rAlgNode == nil {
			lastErr = newErr(KindAlgorithmMissing, "Decrypt", nil)
			continue
		}
		var kid []byte
		if kidNode := Find(rs.Head, IntLabel(LabelKid)); kidNode != nil {
			kid = kidNode.Bytes
		}
		for _, d := range decoders {
			if d.Algorithm() != rAlgNode.Int64 {
				continue
			}
			if !d.Matches(kid) {
				lastErr = newErr(KindKidUnmatched, "Decrypt", nil)
				continue
			}
			cek, derr := d.Decode(adapter, rs.Head, rs.Ciphertext)
			if derr != nil {
				if !IsSoft(derr) {
					return nil, nil, derr
				}
				lastErr = derr
				continue
			}
			encStructure, eerr := BuildEncStructure(ContextEncrypt, msg.Protected, opts.ExternalAAD)
			if eerr != nil {
				return nil, nil, eerr
			}
			pt, aerr := adapter.AEADDecrypt(ContentAlg(algNode.Int64), cek, ivNode.Bytes, encStructure, msg.Ciphertext)
			if aerr != nil {
				return nil, nil, aerr
			}
			return pt, msg, nil
		}
	}
	return nil, nil, lastErr
}

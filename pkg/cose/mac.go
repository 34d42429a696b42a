package cose

import "github.com/fxamacker/cbor/v2"

// MacMessage is the decoded form of a COSE_Mac structure (RFC 9052 §6.1):
// [protected, unprotected, payload, tag, recipients].
type MacMessage struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Payload     []byte
	Tag         []byte
	Recipients  []RecipientStructure
	Head        *Param
}

// Mac computes a COSE_Mac message: a fresh MAC key is generated, the tag
// is computed over it, and it is wrapped once per recipient, generalizing
// Mac0 to the recipient tree.
func Mac(adapter Adapter, alg MACAlg, recipients []RecipientEncoder, payload []byte, detached bool, extra *Param, opts Options) ([]byte, error) {
	hashAlg, ok := hmacHashFor(alg)
	if !ok {
		return nil, newErr(KindUnsupportedAlgorithm, "Mac", nil)
	}
	if len(recipients) == 0 {
		return nil, newErr(KindWrongArity, "Mac", nil)
	}
	keyLen := map[HashAlg]int{HashSHA256: 32, HashSHA384: 48, HashSHA512: 64}[hashAlg]
	macKey, err := adapter.GetRandom(keyLen)
	if err != nil {
		return nil, err
	}

	head := Append(NewIntParam(IntLabel(LabelAlg), int64(alg), true), extra)
	protected, unprotected, err := EncodeHeaders(head)
	if err != nil {
		return nil, err
	}
	macStructure, err := BuildMACStructure(ContextMAC, protected, opts.ExternalAAD, payload)
	if err != nil {
		return nil, err
	}
	m, err := adapter.HMACSetup(macKey, hashAlg)
	if err != nil {
		return nil, err
	}
	if _, err := m.Write(macStructure); err != nil {
		return nil, newErr(KindHmacGeneralFail, "Mac", err)
	}
	tag, err := adapter.HMACComputeFinish(m)
	if err != nil {
		return nil, err
	}

	recipElems := make([]interface{}, len(recipients))
	for i, r := range recipients {
		elem, err := EncodeRecipient(adapter, r, macKey)
		if err != nil {
			return nil, err
		}
		recipElems[i] = elem
	}

	var payloadField interface{}
	if detached {
		payloadField = nil
	} else {
		payloadField = orEmpty(payload)
	}
	body, err := canonMarshal([]interface{}{protected, unprotected, payloadField, tag, recipElems})
	if err != nil {
		return nil, newErr(KindFormat, "Mac", err)
	}
	return wrapTag(TagMAC, body, opts)
}

// DecodeMac parses a COSE_Mac message without validating the tag.
func DecodeMac(message []byte, opts Options) (*MacMessage, error) {
	body, err := unwrapTag(TagMAC, message, opts)
	if err != nil {
		return nil, err
	}
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeMac", err)
	}
	if len(raw) != 5 {
		return nil, newErr(KindWrongArity, "DecodeMac", nil)
	}
	var protected []byte
	if err := cbor.Unmarshal(raw[0], &protected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac", err)
	}
	var unprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &unprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac", err)
	}
	payload, err := decodeOptionalBytes(raw[2])
	if err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac", err)
	}
	var tag []byte
	if err := cbor.Unmarshal(raw[3], &tag); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac", err)
	}
	var rawRecips []cbor.RawMessage
	if err := cbor.Unmarshal(raw[4], &rawRecips); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac", err)
	}
	if len(rawRecips) == 0 {
		return nil, newErr(KindWrongArity, "DecodeMac", nil)
	}
	head, err := DecodeHeaders(protected, unprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}
	recips := make([]RecipientStructure, len(rawRecips))
	for i, rr := range rawRecips {
		var elem []cbor.RawMessage
		if err := cbor.Unmarshal(rr, &elem); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeMac", err)
		}
		if len(elem) != 3 {
			return nil, newErr(KindWrongArity, "DecodeMac", nil)
		}
		var rp []byte
		if err := cbor.Unmarshal(elem[0], &rp); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeMac", err)
		}
		var ru map[interface{}]interface{}
		if err := cbor.Unmarshal(elem[1], &ru); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeMac", err)
		}
		var rc []byte
		if err := cbor.Unmarshal(elem[2], &rc); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeMac", err)
		}
		rs, err := DecodeRecipientRaw(rp, ru, rc, opts.pool(), !opts.NoCritCheck)
		if err != nil {
			return nil, err
		}
		recips[i] = *rs
	}
	return &MacMessage{
		Protected:   protected,
		Unprotected: unprotected,
		Payload:     payload,
		Tag:         tag,
		Recipients:  recips,
		Head:        head,
	}, nil
}

// VerifyMac decodes a COSE_Mac message, recovers the MAC key from the
// first matching recipient decoder, and validates the tag.
func VerifyMac(adapter Adapter, decoders []RecipientDecoder, message []byte, detachedPayload []byte, opts Options) (*MacMessage, error) {
	msg, err := DecodeMac(message, opts)
	if err != nil {
		return nil, err
	}
	payload := msg.Payload
	if payload == nil {
		payload = detachedPayload
	}
	if opts.DecodeOnly {
		return msg, nil
	}
	algNode := Find(msg.Head, IntLabel(LabelAlg))
	if algNode == nil {
		return nil, newErr(KindAlgorithmMissing, "VerifyMac", nil)
	}
	hashAlg, ok := hmacHashFor(MACAlg(algNode.Int64))
	if !ok {
		return nil, newErr(KindUnsupportedAlgorithm, "VerifyMac", nil)
	}

	var lastErr error = newErr(KindDecline, "VerifyMac", nil)
	for _, rs := range msg.Recipients {
		rAlgNode := Find(rs.Head, IntLabel(LabelAlg))
		if rAlgNode == nil {
			lastErr = newErr(KindAlgorithmMissing, "VerifyMac", nil)
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
				lastErr = newErr(KindKidUnmatched, "VerifyMac", nil)
				continue
			}
			macKey, derr := d.Decode(adapter, rs.Head, rs.Ciphertext)
			if derr != nil {
				if !IsSoft(derr) {
					return nil, derr
				}
				lastErr = derr
				continue
			}
			macStructure, merr := BuildMACStructure(ContextMAC, msg.Protected, opts.ExternalAAD, payload)
			if merr != nil {
				return nil, merr
			}
			m, herr := adapter.HMACSetup(macKey, hashAlg)
			if herr != nil {
				return nil, herr
			}
			if _, werr := m.Write(macStructure); werr != nil {
				return nil, newErr(KindHmacGeneralFail, "VerifyMac", werr)
			}
			if verr := adapter.HMACValidateFinish(m, msg.Tag); verr != nil {
				return nil, verr
			}
			return msg, nil
		}
	}
	return nil, lastErr
}

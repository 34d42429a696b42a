package cose

import "github.com/fxamacker/cbor/v2"

func nonceLenFor(alg ContentAlg) int {
	switch alg {
	case AlgA128GCM, AlgA192GCM, AlgA256GCM:
		return 12
	default:
		return 0
	}
}

func contentKeyLen(alg ContentAlg) int {
	switch alg {
	case AlgA128GCM:
		return 16
	case AlgA192GCM:
		return 24
	case AlgA256GCM:
		return 32
	default:
		return 0
	}
}

// Encrypt0Message is the decoded form of a COSE_Encrypt0 structure
// (RFC 9052 §5.2): [protected, unprotected, ciphertext].
type Encrypt0Message struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Ciphertext  []byte
	Head        *Param
}

// Encrypt0 builds and seals a COSE_Encrypt0 message. A fresh IV is
// generated and carried in the unprotected header (RFC 9052 §5.2, I's
// bucket placement rule).
func Encrypt0(adapter Adapter, alg ContentAlg, key []byte, plaintext []byte, extra *Param, opts Options) ([]byte, error) {
	nonceLen := nonceLenFor(alg)
	if nonceLen == 0 {
		return nil, newErr(KindUnsupportedEncryptionAlgorithm, "Encrypt0", nil)
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
	encStructure, err := BuildEncStructure(ContextEncrypt0, protected, opts.ExternalAAD)
	if err != nil {
		return nil, err
	}
	ciphertext, err := adapter.AEADEncrypt(alg, key, iv, encStructure, plaintext)
	if err != nil {
		return nil, err
	}
	body, err := canonMarshal([]interface{}{protected, unprotected, ciphertext})
	if err != nil {
		return nil, newErr(KindFormat, "Encrypt0", err)
	}
	return wrapTag(TagEncrypt0, body, opts)
}

// DecodeEncrypt0 parses a COSE_Encrypt0 message without attempting
// decryption.
func DecodeEncrypt0(message []byte, opts Options) (*Encrypt0Message, error) {
	body, err := unwrapTag(TagEncrypt0, message, opts)
	if err != nil {
		return nil, err
	}
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeEncrypt0", err)
	}
	if len(raw) != 3 {
		return nil, newErr(KindWrongArity, "DecodeEncrypt0", nil)
	}
	var protected []byte
	if err := cbor.Unmarshal(raw[0], &protected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt0", err)
	}
	var unprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &unprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt0", err)
	}
	var ciphertext []byte
	if err := cbor.Unmarshal(raw[2], &ciphertext); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeEncrypt0", err)
	}
	head, err := DecodeHeaders(protected, unprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}
	return &Encrypt0Message{Protected: protected, Unprotected: unprotected, Ciphertext: ciphertext, Head: head}, nil
}

// Decrypt0 decodes and opens a COSE_Encrypt0 message under key.
func Decrypt0(adapter Adapter, key []byte, message []byte, opts Options) ([]byte, *Encrypt0Message, error) {
	msg, err := DecodeEncrypt0(message, opts)
	if err != nil {
		return nil, nil, err
	}
	algNode := Find(msg.Head, IntLabel(LabelAlg))
	if algNode == nil {
		return nil, nil, newErr(KindAlgorithmMissing, "Decrypt0", nil)
	}
	ivNode := Find(msg.Head, IntLabel(LabelIV))
	if ivNode == nil {
		return nil, nil, newErr(KindFormat, "Decrypt0", nil)
	}
	if opts.DecodeOnly {
		return nil, msg, nil
	}
	encStructure, err := BuildEncStructure(ContextEncrypt0, msg.Protected, opts.ExternalAAD)
	if err != nil {
		return nil, nil, err
	}
	pt, err := adapter.AEADDecrypt(ContentAlg(algNode.Int64), key, ivNode.Bytes, encStructure, msg.Ciphertext)
	if err != nil {
		return nil, nil, err
	}
	return pt, msg, nil
}

package cose

import "github.com/fxamacker/cbor/v2"

func hmacHashFor(alg MACAlg) (HashAlg, bool) {
	switch alg {
	case AlgHMAC256:
		return HashSHA256, true
	case AlgHMAC384:
		return HashSHA384, true
	case AlgHMAC512:
		return HashSHA512, true
	default:
		return 0, false
	}
}

// Mac0Message is the decoded form of a COSE_Mac0 structure (RFC 9052
// §6.2): [protected, unprotected, payload, tag].
type Mac0Message struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Payload     []byte
	Tag         []byte
	Head        *Param
}

// Mac0 computes a COSE_Mac0 message, structurally mirroring Sign1.
func Mac0(adapter Adapter, alg MACAlg, key []byte, payload []byte, detached bool, extra *Param, opts Options) ([]byte, error) {
	hashAlg, ok := hmacHashFor(alg)
	if !ok {
		return nil, newErr(KindUnsupportedAlgorithm, "Mac0", nil)
	}
	head := Append(NewIntParam(IntLabel(LabelAlg), int64(alg), true), extra)
	protected, unprotected, err := EncodeHeaders(head)
	if err != nil {
		return nil, err
	}
	macStructure, err := BuildMACStructure(ContextMAC0, protected, opts.ExternalAAD, payload)
	if err != nil {
		return nil, err
	}
	m, err := adapter.HMACSetup(key, hashAlg)
	if err != nil {
		return nil, err
	}
	if _, err := m.Write(macStructure); err != nil {
		return nil, newErr(KindHmacGeneralFail, "Mac0", err)
	}
	tag, err := adapter.HMACComputeFinish(m)
	if err != nil {
		return nil, err
	}

	var payloadField interface{}
	if detached {
		payloadField = nil
	} else {
		payloadField = orEmpty(payload)
	}
	body, err := canonMarshal([]interface{}{protected, unprotected, payloadField, tag})
	if err != nil {
		return nil, newErr(KindFormat, "Mac0", err)
	}
	return wrapTag(TagMAC0, body, opts)
}

// DecodeMac0 parses a COSE_Mac0 message without validating the tag.
func DecodeMac0(message []byte, opts Options) (*Mac0Message, error) {
	body, err := unwrapTag(TagMAC0, message, opts)
	if err != nil {
		return nil, err
	}
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeMac0", err)
	}
	if len(raw) != 4 {
		return nil, newErr(KindWrongArity, "DecodeMac0", nil)
	}
	var protected []byte
	if err := cbor.Unmarshal(raw[0], &protected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac0", err)
	}
	var unprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &unprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac0", err)
	}
	payload, err := decodeOptionalBytes(raw[2])
	if err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac0", err)
	}
	var tag []byte
	if err := cbor.Unmarshal(raw[3], &tag); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeMac0", err)
	}
	head, err := DecodeHeaders(protected, unprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}
	return &Mac0Message{Protected: protected, Unprotected: unprotected, Payload: payload, Tag: tag, Head: head}, nil
}

// VerifyMac0 decodes a COSE_Mac0 message and validates its tag under key.
func VerifyMac0(adapter Adapter, key []byte, message []byte, detachedPayload []byte, opts Options) (*Mac0Message, error) {
	msg, err := DecodeMac0(message, opts)
	if err != nil {
		return nil, err
	}
	payload := msg.Payload
	if payload == nil {
		payload = detachedPayload
	}
	algNode := Find(msg.Head, IntLabel(LabelAlg))
	if algNode == nil {
		return nil, newErr(KindAlgorithmMissing, "VerifyMac0", nil)
	}
	if opts.DecodeOnly {
		return msg, nil
	}
	hashAlg, ok := hmacHashFor(MACAlg(algNode.Int64))
	if !ok {
		return nil, newErr(KindUnsupportedAlgorithm, "VerifyMac0", nil)
	}
	macStructure, err := BuildMACStructure(ContextMAC0, msg.Protected, opts.ExternalAAD, payload)
	if err != nil {
		return nil, err
	}
	m, err := adapter.HMACSetup(key, hashAlg)
	if err != nil {
		return nil, err
	}
	if _, err := m.Write(macStructure); err != nil {
		return nil, newErr(KindHmacGeneralFail, "VerifyMac0", err)
	}
	if err := adapter.HMACValidateFinish(m, msg.Tag); err != nil {
		return nil, err
	}
	return msg, nil
}

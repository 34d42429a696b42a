package cose

import "github.com/fxamacker/cbor/v2"

// Sign1Message is the decoded form of a COSE_Sign1 structure (RFC 9052
// §4.2): [protected, unprotected, payload, signature].
type Sign1Message struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Payload     []byte // nil when the payload was encoded as detached (CBOR null)
	Signature   []byte
	Head        *Param
}

// Sign1 builds and signs a COSE_Sign1 message. extra, if non-nil, is merged with the
// signer's own protected/unprotected parameters before header encoding.
// When detached is true, payload is used to build the Sig_structure but
// the wire message carries a CBOR null in the payload position instead.
func Sign1(adapter Adapter, signer Signer, payload []byte, detached bool, extra *Param, opts Options) ([]byte, error) {
	head := Append(signer.ProtectedParams(), extra)
	protected, unprotected, err := EncodeHeaders(head)
	if err != nil {
		return nil, err
	}

	sigStructure, err := BuildSigStructure(ContextSignature1, protected, nil, opts.ExternalAAD, payload)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(adapter, sigStructure)
	if err != nil {
		return nil, err
	}

	var payloadField interface{}
	if detached {
		payloadField = nil
	} else {
		payloadField = orEmpty(payload)
	}

	body, err := canonMarshal([]interface{}{protected, unprotected, payloadField, sig})
	if err != nil {
		return nil, newErr(KindFormat, "Sign1", err)
	}
	return wrapTag(TagSign1, body, opts)
}

// DecodeSign1 parses a COSE_Sign1 wire message into its components and
// header parameters without performing any signature check (used directly
// by inspection tooling, and internally by Verify1).
func DecodeSign1(message []byte, opts Options) (*Sign1Message, error) {
	body, err := unwrapTag(TagSign1, message, opts)
	if err != nil {
		return nil, err
	}

	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeSign1", err)
	}
	if len(raw) != 4 {
		return nil, newErr(KindWrongArity, "DecodeSign1", nil)
	}

	var protected []byte
	if err := cbor.Unmarshal(raw[0], &protected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign1", err)
	}
	var unprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &unprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign1", err)
	}
	payload, err := decodeOptionalBytes(raw[2])
	if err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign1", err)
	}
	var sig []byte
	if err := cbor.Unmarshal(raw[3], &sig); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign1", err)
	}

	head, err := DecodeHeaders(protected, unprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}

	return &Sign1Message{
		Protected:   protected,
		Unprotected: unprotected,
		Payload:     payload,
		Signature:   sig,
		Head:        head,
	}, nil
}

// Verify1 decodes a COSE_Sign1 message and checks its signature against
// the first verifier in verifiers whose kid matches the message's kid (or
// every verifier, if none carry a kid). detachedPayload supplies the
// payload when the message encodes it as detached; it is ignored
// otherwise. Soft errors (kid mismatch, unsupported algorithm) from one
// verifier fall through to the next; a hard failure aborts immediately.
func Verify1(adapter Adapter, verifiers []Verifier, message []byte, detachedPayload []byte, opts Options) (*Sign1Message, Verifier, error) {
	msg, err := DecodeSign1(message, opts)
	if err != nil {
		return nil, nil, err
	}

	payload := msg.Payload
	if payload == nil {
		payload = detachedPayload
	}

	alg := Find(msg.Head, IntLabel(LabelAlg))
	if alg == nil {
		return nil, nil, newErr(KindAlgorithmMissing, "Verify1", nil)
	}
	kidNode := Find(msg.Head, IntLabel(LabelKid))
	var kid []byte
	if kidNode != nil {
		kid = kidNode.Bytes
	}

	sigStructure, err := BuildSigStructure(ContextSignature1, msg.Protected, nil, opts.ExternalAAD, payload)
	if err != nil {
		return nil, nil, err
	}

	if opts.DecodeOnly {
		return msg, nil, nil
	}

	var lastErr error = newErr(KindDecline, "Verify1", nil)
	for _, v := range verifiers {
		if int64(v.Algorithm()) != alg.Int64 {
			continue
		}
		if !v.Matches(kid) {
			lastErr = newErr(KindKidUnmatched, "Verify1", nil)
			continue
		}
		err := v.Verify(adapter, sigStructure, msg.Signature)
		if err == nil {
			return msg, v, nil
		}
		if !IsSoft(err) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func decodeOptionalBytes(raw cbor.RawMessage) ([]byte, error) {
	if len(raw) == 1 && raw[0] == 0xf6 {
		return nil, nil
	}
	var b []byte
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return b, nil
}

package cose

import "github.com/fxamacker/cbor/v2"

// SignatureElement is one entry in a COSE_Sign message's array of
// per-signer [protected, unprotected, signature] triples.
type SignatureElement struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Signature   []byte
	Head        *Param
}

// SignMessage is the decoded form of a COSE_Sign structure (RFC 9052 §4.1):
// [protected, unprotected, payload, signatures].
type SignMessage struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Payload     []byte
	Signatures  []SignatureElement
	Head        *Param
}

// Sign builds and signs a COSE_Sign message with one signature per entry
// in signers, generalizing Sign1 to RFC 9052's multi-signer form.
// bodyExtra carries body-level header parameters shared by every signer;
// each signer's own ProtectedParams() plus its entry in signerExtra (which
// may be nil) form that signature's own protected/unprotected bucket.
func Sign(adapter Adapter, signers []Signer, payload []byte, detached bool, bodyExtra *Param, signerExtra []*Param, opts Options) ([]byte, error) {
	if len(signers) == 0 {
		return nil, newErr(KindWrongArity, "Sign", nil)
	}
	bodyProtected, bodyUnprotected, err := EncodeHeaders(bodyExtra)
	if err != nil {
		return nil, err
	}

	sigElems := make([]interface{}, len(signers))
	for i, signer := range signers {
		var extra *Param
		if i < len(signerExtra) {
			extra = signerExtra[i]
		}
		head := Append(signer.ProtectedParams(), extra)
		signProtected, signUnprotected, err := EncodeHeaders(head)
		if err != nil {
			return nil, err
		}
		sigStructure, err := BuildSigStructure(ContextSignature, bodyProtected, signProtected, opts.ExternalAAD, payload)
		if err != nil {
			return nil, err
		}
		sig, err := signer.Sign(adapter, sigStructure)
		if err != nil {
			return nil, err
		}
		sigElems[i] = []interface{}{signProtected, signUnprotected, sig}
	}

	var payloadField interface{}
	if detached {
		payloadField = nil
	} else {
		payloadField = orEmpty(payload)
	}

	body, err := canonMarshal([]interface{}{bodyProtected, bodyUnprotected, payloadField, sigElems})
	if err != nil {
		return nil, newErr(KindFormat, "Sign", err)
	}
	return wrapTag(TagSign, body, opts)
}

// DecodeSign parses a COSE_Sign wire message into its components without
// performing any signature checks.
func DecodeSign(message []byte, opts Options) (*SignMessage, error) {
	body, err := unwrapTag(TagSign, message, opts)
	if err != nil {
		return nil, err
	}

	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(body, &raw); err != nil {
		return nil, newErr(KindFormat, "DecodeSign", err)
	}
	if len(raw) != 4 {
		return nil, newErr(KindWrongArity, "DecodeSign", nil)
	}

	var bodyProtected []byte
	if err := cbor.Unmarshal(raw[0], &bodyProtected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign", err)
	}
	var bodyUnprotected map[interface{}]interface{}
	if err := cbor.Unmarshal(raw[1], &bodyUnprotected); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign", err)
	}
	payload, err := decodeOptionalBytes(raw[2])
	if err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign", err)
	}

	var rawSigs []cbor.RawMessage
	if err := cbor.Unmarshal(raw[3], &rawSigs); err != nil {
		return nil, newErr(KindWrongElementType, "DecodeSign", err)
	}
	if len(rawSigs) == 0 {
		return nil, newErr(KindWrongArity, "DecodeSign", nil)
	}

	bodyHead, err := DecodeHeaders(bodyProtected, bodyUnprotected, opts.pool(), nil, !opts.NoCritCheck)
	if err != nil {
		return nil, err
	}

	sigs := make([]SignatureElement, len(rawSigs))
	for i, rs := range rawSigs {
		var elem []cbor.RawMessage
		if err := cbor.Unmarshal(rs, &elem); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeSign", err)
		}
		if len(elem) != 3 {
			return nil, newErr(KindWrongArity, "DecodeSign", nil)
		}
		var sp []byte
		if err := cbor.Unmarshal(elem[0], &sp); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeSign", err)
		}
		var su map[interface{}]interface{}
		if err := cbor.Unmarshal(elem[1], &su); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeSign", err)
		}
		var sig []byte
		if err := cbor.Unmarshal(elem[2], &sig); err != nil {
			return nil, newErr(KindWrongElementType, "DecodeSign", err)
		}
		head, err := DecodeHeaders(sp, su, opts.pool(), nil, !opts.NoCritCheck)
		if err != nil {
			return nil, err
		}
		sigs[i] = SignatureElement{Protected: sp, Unprotected: su, Signature: sig, Head: head}
	}

	return &SignMessage{
		Protected:   bodyProtected,
		Unprotected: bodyUnprotected,
		Payload:     payload,
		Signatures:  sigs,
		Head:        bodyHead,
	}, nil
}

// Verify checks a COSE_Sign message. It reports success once any signature
// element validates against any verifier whose algorithm/kid match
// (RFC 9052 doesn't mandate all signatures be checked; this library treats
// COSE_Sign like Sign1 fanned out over N candidate signatures and returns
// on the first match).
func Verify(adapter Adapter, verifiers []Verifier, message []byte, detachedPayload []byte, opts Options) (*SignMessage, Verifier, error) {
	msg, err := DecodeSign(message, opts)
	if err != nil {
		return nil, nil, err
	}
	payload := msg.Payload
	if payload == nil {
		payload = detachedPayload
	}
	if opts.DecodeOnly {
		return msg, nil, nil
	}

	var lastErr error = newErr(KindDecline, "Verify", nil)
	for _, elem := range msg.Signatures {
		algNode := Find(elem.Head, IntLabel(LabelAlg))
		if algNode == nil {
			lastErr = newErr(KindAlgorithmMissing, "Verify", nil)
			continue
		}
		var kid []byte
		if kidNode := Find(elem.Head, IntLabel(LabelKid)); kidNode != nil {
			kid = kidNode.Bytes
		}
		sigStructure, serr := BuildSigStructure(ContextSignature, msg.Protected, elem.Protected, opts.ExternalAAD, payload)
		if serr != nil {
			return nil, nil, serr
		}
		for _, v := range verifiers {
			if int64(v.Algorithm()) != algNode.Int64 {
				continue
			}
			if !v.Matches(kid) {
				lastErr = newErr(KindKidUnmatched, "Verify", nil)
				continue
			}
			verr := v.Verify(adapter, sigStructure, elem.Signature)
			if verr == nil {
				return msg, v, nil
			}
			if !IsSoft(verr) {
				return nil, nil, verr
			}
			lastErr = verr
		}
	}
	return nil, nil, lastErr
}

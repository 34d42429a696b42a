package cose

// Context strings for the three to-be-authenticated structures, RFC 9052
// §4.4/§6.3 and RFC 9053 §5.3 (context string "Signature"/"Signature1" for
// signing, "Encrypt"/"Encrypt0" for AEAD, "MAC"/"MAC0" for MACing).
const (
	ContextSignature  = "Signature"
	ContextSignature1 = "Signature1"
	ContextCounter    = "CounterSignature"
	ContextEncrypt    = "Encrypt"
	ContextEncrypt0   = "Encrypt0"
	ContextMAC        = "MAC"
	ContextMAC0       = "MAC0"
)

// BuildSigStructure serializes the Sig_structure (RFC 9052 §4.4). signProtected
// is nil for COSE_Sign1 (context Signature1, 4-element array) and the
// per-signer protected bstr for COSE_Sign (context Signature, 5-element
// array). The CBOR array encoder concatenates elements in field order with
// no gaps, so a single canonical Marshal of the array is byte-identical to
// hashing [context, body_protected, (sign_protected,) external_aad, payload]
// incrementally in that order.
func BuildSigStructure(context string, bodyProtected, signProtected, externalAAD, payload []byte) ([]byte, error) {
	arr := []interface{}{context, bodyProtected}
	if signProtected != nil {
		arr = append(arr, signProtected)
	}
	arr = append(arr, orEmpty(externalAAD), orEmpty(payload))
	b, err := canonMarshal(arr)
	if err != nil {
		return nil, newErr(KindFormat, "BuildSigStructure", err)
	}
	return b, nil
}

// BuildEncStructure serializes the Enc_structure (RFC 9052 §5.3).
func BuildEncStructure(context string, protected, externalAAD []byte) ([]byte, error) {
	arr := []interface{}{context, orEmpty(protected), orEmpty(externalAAD)}
	b, err := canonMarshal(arr)
	if err != nil {
		return nil, newErr(KindFormat, "BuildEncStructure", err)
	}
	return b, nil
}

// BuildMACStructure serializes the MAC_structure (RFC 9052 §6.3).
func BuildMACStructure(context string, protected, externalAAD, payload []byte) ([]byte, error) {
	arr := []interface{}{context, orEmpty(protected), orEmpty(externalAAD), orEmpty(payload)}
	b, err := canonMarshal(arr)
	if err != nil {
		return nil, newErr(KindFormat, "BuildMACStructure", err)
	}
	return b, nil
}

// ComputeTBS reduces a composed to-be-authenticated structure to what the
// signing algorithm actually consumes: a digest for hash-then-sign
// algorithms (ECDSA, RSA-PSS), or the structure bytes themselves for
// algorithms that hash internally (EdDSA).
func ComputeTBS(adapter Adapter, hashAlg HashAlg, structureBytes []byte, selfHashing bool) ([]byte, error) {
	if selfHashing {
		return structureBytes, nil
	}
	h, err := adapter.HashStart(hashAlg)
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(structureBytes); err != nil {
		return nil, newErr(KindUnsupportedHash, "ComputeTBS", err)
	}
	return adapter.HashFinish(h)
}

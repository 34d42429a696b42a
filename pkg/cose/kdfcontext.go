package cose

// PartyInfo is one of PartyUInfo/PartyVInfo in a COSE_KDF_Context
// (RFC 9053 §5.3). Any field left nil is encoded as CBOR null.
type PartyInfo struct {
	Identity []byte
	Nonce    []byte
	Other    []byte
}

func (p PartyInfo) cborArray() []interface{} {
	return []interface{}{optBytes(p.Identity), optBytes(p.Nonce), optBytes(p.Other)}
}

func optBytes(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return b
}

// KDFContext carries the fields of a COSE_KDF_Context (RFC 9053 §5.3),
// used as the HKDF `info` parameter when deriving a key-wrapping key for
// ECDH-ES+HKDF+AES-KW. The HPKE recipient does not use it; its HKDF call
// takes a fixed info string.
type KDFContext struct {
	AlgorithmID   interface{} // int64 algorithm identifier or tstr
	PartyU        PartyInfo
	PartyV        PartyInfo
	KeyDataLength int    // in bits
	Protected     []byte // SuppPubInfo.protected: the recipient's own protected header bstr
	SuppPubOther  []byte
	SuppPrivInfo  []byte
}

// BuildKDFContext serializes c as the COSE_KDF_Context CBOR array.
func BuildKDFContext(c KDFContext) ([]byte, error) {
	suppPub := []interface{}{int64(c.KeyDataLength), orEmpty(c.Protected)}
	if c.SuppPubOther != nil {
		suppPub = append(suppPub, c.SuppPubOther)
	}
	arr := []interface{}{c.AlgorithmID, c.PartyU.cborArray(), c.PartyV.cborArray(), suppPub}
	if c.SuppPrivInfo != nil {
		arr = append(arr, c.SuppPrivInfo)
	}
	b, err := canonMarshal(arr)
	if err != nil {
		return nil, newErr(KindFormat, "BuildKDFContext", err)
	}
	return b, nil
}

package cose

// HPKEEncoder implements a Base-mode HPKE-style recipient
// (draft-ietf-cose-hpke), hand-rolled over this library's own ECDH/HKDF/
// AEAD adapter calls rather than a dedicated HPKE package, since none
// exists anywhere in the reference corpus (the SAGE-X-project examples use
// the same ECDH+HKDF+AEAD shape by hand). A fresh ephemeral key agrees
// with the recipient's static public key; HKDF derives an AEAD key and
// base nonce directly from the shared secret (no HPKE labeled
// extract/expand schedule), and the CEK is sealed under that AEAD key as
// the recipient's ciphertext.
type HPKEEncoder struct {
	Curve        Curve
	ContentAlg   ContentAlg
	Kid          []byte
	RecipientPub Key // *ecdh.PublicKey
}

func (e *HPKEEncoder) Kind() RecipientKind { return RecipientKindHPKE }
func (e *HPKEEncoder) Algorithm() int64    { return AlgHPKEBase }
func (e *HPKEEncoder) KeyID() []byte       { return e.Kid }

func hpkeAEADKeyNonceLen(alg ContentAlg) (keyLen, nonceLen int, ok bool) {
	switch alg {
	case AlgA128GCM:
		return 16, 12, true
	case AlgA192GCM:
		return 24, 12, true
	case AlgA256GCM:
		return 32, 12, true
	default:
		return 0, 0, false
	}
}

func (e *HPKEEncoder) Encode(adapter Adapter, cek []byte) (*Param, []byte, error) {
	keyLen, nonceLen, ok := hpkeAEADKeyNonceLen(e.ContentAlg)
	if !ok {
		return nil, nil, newErr(KindUnsupportedEncryptionAlgorithm, "HPKEEncoder.Encode", nil)
	}
	ephPriv, ephPub, err := adapter.GenerateECKey(e.Curve)
	if err != nil {
		return nil, nil, err
	}
	secret, err := adapter.ECDH(e.Curve, ephPriv, e.RecipientPub)
	if err != nil {
		return nil, nil, err
	}
	_, x, y, err := adapter.ExportEC2Key(ephPub)
	if err != nil {
		return nil, nil, err
	}
	ephKeyBytes, err := EncodeEC2PublicKey(e.Curve, x, y, nil)
	if err != nil {
		return nil, nil, err
	}

	okm, err := adapter.HKDF(HashSHA256, ephKeyBytes, secret, []byte("COSE-HPKE-Base"), keyLen+nonceLen)
	if err != nil {
		return nil, nil, err
	}
	aeadKey, nonce := okm[:keyLen], okm[keyLen:]
	sealed, err := adapter.AEADEncrypt(e.ContentAlg, aeadKey, nonce, nil, cek)
	if err != nil {
		return nil, nil, err
	}

	head, err := encodeEphemeralKeyParam(ephKeyBytes)
	if err != nil {
		return nil, nil, err
	}
	return head, sealed, nil
}

// HPKEDecoder reverses HPKEEncoder using the recipient's static private key.
type HPKEDecoder struct {
	Curve      Curve
	ContentAlg ContentAlg
	Kid        []byte
	StaticKey  Key // *ecdh.PrivateKey
}

func (d *HPKEDecoder) Kind() RecipientKind     { return RecipientKindHPKE }
func (d *HPKEDecoder) Algorithm() int64        { return AlgHPKEBase }
func (d *HPKEDecoder) Matches(kid []byte) bool { return kidMatches(d.Kid, kid) }

func (d *HPKEDecoder) Decode(adapter Adapter, head *Param, ciphertext []byte) ([]byte, error) {
	keyLen, nonceLen, ok := hpkeAEADKeyNonceLen(d.ContentAlg)
	if !ok {
		return nil, newErr(KindUnsupportedEncryptionAlgorithm, "HPKEDecoder.Decode", nil)
	}
	ephKeyBytes, err := decodeEphemeralKeyParam(head)
	if err != nil {
		return nil, err
	}
	ephKey, err := DecodeCoseKey(ephKeyBytes)
	if err != nil {
		return nil, err
	}
	ephPub, err := adapter.ImportEC2PublicKey(d.Curve, ephKey.X, ephKey.Y)
	if err != nil {
		return nil, err
	}
	secret, err := adapter.ECDH(d.Curve, d.StaticKey, ephPub)
	if err != nil {
		return nil, err
	}
	okm, err := adapter.HKDF(HashSHA256, ephKeyBytes, secret, []byte("COSE-HPKE-Base"), keyLen+nonceLen)
	if err != nil {
		return nil, err
	}
	aeadKey, nonce := okm[:keyLen], okm[keyLen:]
	return adapter.AEADDecrypt(d.ContentAlg, aeadKey, nonce, nil, ciphertext)
}

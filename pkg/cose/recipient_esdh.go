package cose

// kwKeyBits returns the derived-KEK length in bits for a given ESDH
// key-wrap algorithm, used as SuppPubInfo.keyDataLength in the
// COSE_KDF_Context (RFC 9053 §5.3).
func kwKeyBits(alg KeyAgreeAlg) (int, KWAlg, bool) {
	switch alg {
	case AlgECDHESA128KW:
		return 128, AlgA128KW, true
	case AlgECDHESA192KW:
		return 192, AlgA192KW, true
	case AlgECDHESA256KW:
		return 256, AlgA256KW, true
	default:
		return 0, 0, false
	}
}

// ESDHEncoder implements ECDH-ES+HKDF+AES-KW (RFC 9053 §5): a fresh
// ephemeral EC key agrees with the recipient's static public key, HKDF
// derives a key-wrapping key over the resulting shared secret, and the CEK
// is wrapped under that derived KEK with RFC 3394 AES Key Wrap.
//
// PartyU, PartyV, SuppPubOther, SuppPrivInfo, and Salt configure the
// COSE_KDF_Context (RFC 9053 §5.3) and HKDF-Extract salt; the matching
// ESDHDecoder must be given identical values or derivation yields a
// different KEK and unwrap fails.
type ESDHEncoder struct {
	Alg          KeyAgreeAlg
	Curve        Curve
	Kid          []byte
	RecipientPub Key // *ecdh.PublicKey

	PartyU       PartyInfo
	PartyV       PartyInfo
	SuppPubOther []byte
	SuppPrivInfo []byte
	Salt         []byte
}

func (e *ESDHEncoder) Kind() RecipientKind { return RecipientKindESDH }
func (e *ESDHEncoder) Algorithm() int64    { return int64(e.Alg) }
func (e *ESDHEncoder) KeyID() []byte       { return e.Kid }

func (e *ESDHEncoder) Encode(adapter Adapter, cek []byte) (*Param, []byte, error) {
	bits, kwAlg, ok := kwKeyBits(e.Alg)
	if !ok {
		return nil, nil, newErr(KindUnsupportedKeyExchangeAlgorithm, "ESDHEncoder.Encode", nil)
	}
	ephPriv, ephPub, err := adapter.GenerateECKey(e.Curve)
	if err != nil {
		return nil, nil, err
	}
	secret, err := adapter.ECDH(e.Curve, ephPriv, e.RecipientPub)
	if err != nil {
		return nil, nil, err
	}

	recipientProtected, _, err := EncodeHeaders(NewIntParam(IntLabel(LabelAlg), int64(e.Alg), true))
	if err != nil {
		return nil, nil, err
	}
	kdfCtx, err := BuildKDFContext(KDFContext{
		AlgorithmID:   int64(kwAlg),
		PartyU:        e.PartyU,
		PartyV:        e.PartyV,
		KeyDataLength: bits,
		Protected:     recipientProtected,
		SuppPubOther:  e.SuppPubOther,
		SuppPrivInfo:  e.SuppPrivInfo,
	})
	if err != nil {
		return nil, nil, err
	}
	kek, err := adapter.HKDF(HashSHA256, e.Salt, secret, kdfCtx, bits/8)
	if err != nil {
		return nil, nil, err
	}
	wrapped, err := adapter.KWWrap(kwAlg, kek, cek)
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
	head, err := encodeEphemeralKeyParam(ephKeyBytes)
	if err != nil {
		return nil, nil, err
	}
	return head, wrapped, nil
}

// ESDHDecoder reverses ESDHEncoder using the recipient's static private key.
// PartyU, PartyV, SuppPubOther, SuppPrivInfo, and Salt must match the values
// the sender used to build ESDHEncoder, or KDF derivation produces a
// different KEK and KWUnwrap fails with DataAuthFailed.
type ESDHDecoder struct {
	Alg       KeyAgreeAlg
	Curve     Curve
	Kid       []byte
	StaticKey Key // *ecdh.PrivateKey

	PartyU       PartyInfo
	PartyV       PartyInfo
	SuppPubOther []byte
	SuppPrivInfo []byte
	Salt         []byte
}

func (d *ESDHDecoder) Kind() RecipientKind     { return RecipientKindESDH }
func (d *ESDHDecoder) Algorithm() int64        { return int64(d.Alg) }
func (d *ESDHDecoder) Matches(kid []byte) bool { return kidMatches(d.Kid, kid) }

func (d *ESDHDecoder) Decode(adapter Adapter, head *Param, ciphertext []byte) ([]byte, error) {
	bits, kwAlg, ok := kwKeyBits(d.Alg)
	if !ok {
		return nil, newErr(KindUnsupportedKeyExchangeAlgorithm, "ESDHDecoder.Decode", nil)
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

	recipientProtected, _, err := EncodeHeaders(NewIntParam(IntLabel(LabelAlg), int64(d.Alg), true))
	if err != nil {
		return nil, err
	}
	kdfCtx, err := BuildKDFContext(KDFContext{
		AlgorithmID:   int64(kwAlg),
		PartyU:        d.PartyU,
		PartyV:        d.PartyV,
		KeyDataLength: bits,
		Protected:     recipientProtected,
		SuppPubOther:  d.SuppPubOther,
		SuppPrivInfo:  d.SuppPrivInfo,
	})
	if err != nil {
		return nil, err
	}
	kek, err := adapter.HKDF(HashSHA256, d.Salt, secret, kdfCtx, bits/8)
	if err != nil {
		return nil, err
	}
	return adapter.KWUnwrap(kwAlg, kek, ciphertext)
}

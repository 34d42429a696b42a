package cose

// AESKWEncoder wraps the CEK directly under a pre-shared key-encryption
// key with RFC 3394 AES Key Wrap.
type AESKWEncoder struct {
	Alg KWAlg
	Kid []byte
	KEK []byte
}

func (e *AESKWEncoder) Kind() RecipientKind { return RecipientKindAESKW }
func (e *AESKWEncoder) Algorithm() int64    { return int64(e.Alg) }
func (e *AESKWEncoder) KeyID() []byte       { return e.Kid }

func (e *AESKWEncoder) Encode(adapter Adapter, cek []byte) (*Param, []byte, error) {
	wrapped, err := adapter.KWWrap(e.Alg, e.KEK, cek)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapped, nil
}

// AESKWDecoder unwraps a CEK wrapped by AESKWEncoder.
type AESKWDecoder struct {
	Alg KWAlg
	Kid []byte
	KEK []byte
}

func (d *AESKWDecoder) Kind() RecipientKind     { return RecipientKindAESKW }
func (d *AESKWDecoder) Algorithm() int64        { return int64(d.Alg) }
func (d *AESKWDecoder) Matches(kid []byte) bool { return kidMatches(d.Kid, kid) }

func (d *AESKWDecoder) Decode(adapter Adapter, head *Param, ciphertext []byte) ([]byte, error) {
	return adapter.KWUnwrap(d.Alg, d.KEK, ciphertext)
}

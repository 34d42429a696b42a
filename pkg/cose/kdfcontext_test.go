package cose_test

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/coseforge/cosecore/pkg/cose"
)

func TestBuildKDFContext(t *testing.T) {
	t.Run("encodes a 4-element array without SuppPrivInfo", func(t *testing.T) {
		ctx := cose.KDFContext{
			AlgorithmID:   int64(cose.AlgA128KW),
			PartyU:        cose.PartyInfo{Identity: []byte("alice")},
			PartyV:        cose.PartyInfo{Identity: []byte("bob")},
			KeyDataLength: 128,
			Protected:     []byte{0xa1, 0x01, 0x26},
		}
		b, err := cose.BuildKDFContext(ctx)
		if err != nil {
			t.Fatalf("BuildKDFContext: %v", err)
		}
		var arr []interface{}
		if err := cbor.Unmarshal(b, &arr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(arr) != 4 {
			t.Fatalf("expected 4 elements, got %d", len(arr))
		}
	})

	t.Run("distinct algorithm IDs produce distinct contexts", func(t *testing.T) {
		base := cose.KDFContext{KeyDataLength: 128, Protected: []byte{0xa0}}
		base.AlgorithmID = int64(cose.AlgA128KW)
		b1, err := cose.BuildKDFContext(base)
		if err != nil {
			t.Fatalf("BuildKDFContext: %v", err)
		}
		base.AlgorithmID = int64(cose.AlgA256KW)
		b2, err := cose.BuildKDFContext(base)
		if err != nil {
			t.Fatalf("BuildKDFContext: %v", err)
		}
		if bytes.Equal(b1, b2) {
			t.Error("expected distinct encodings for distinct algorithm IDs")
		}
	})

	t.Run("fed through HKDF yields deterministic derived key material", func(t *testing.T) {
		ctx := cose.KDFContext{AlgorithmID: int64(cose.AlgA128KW), KeyDataLength: 128, Protected: []byte{0xa0}}
		kdfCtx, err := cose.BuildKDFContext(ctx)
		if err != nil {
			t.Fatalf("BuildKDFContext: %v", err)
		}
		adapter := cose.NewStdAdapter()
		secret := bytes.Repeat([]byte{0x42}, 32)
		kek1, err := adapter.HKDF(cose.HashSHA256, nil, secret, kdfCtx, 16)
		if err != nil {
			t.Fatalf("HKDF: %v", err)
		}
		kek2, err := adapter.HKDF(cose.HashSHA256, nil, secret, kdfCtx, 16)
		if err != nil {
			t.Fatalf("HKDF: %v", err)
		}
		if !bytes.Equal(kek1, kek2) {
			t.Error("expected deterministic derived key for identical context")
		}
	})
}

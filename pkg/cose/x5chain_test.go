package cose_test

import (
	"bytes"
	"testing"

	"github.com/coseforge/cosecore/pkg/cose"
)

func TestX5ChainRoundTrip(t *testing.T) {
	t.Run("single certificate encodes as a lone byte string", func(t *testing.T) {
		cert := bytes.Repeat([]byte{0xaa}, 64)
		raw, err := cose.EncodeX5Chain([][]byte{cert})
		if err != nil {
			t.Fatalf("EncodeX5Chain: %v", err)
		}
		head := cose.Append(nil, cose.X5ChainParam(raw, false))
		certs, ok, err := cose.DecodeX5Chain(head)
		if err != nil {
			t.Fatalf("DecodeX5Chain: %v", err)
		}
		if !ok {
			t.Fatal("expected x5chain to be present")
		}
		if len(certs) != 1 || !bytes.Equal(certs[0], cert) {
			t.Errorf("expected [%x], got %x", cert, certs)
		}
	})

	t.Run("multiple certificates encode as an array", func(t *testing.T) {
		leaf := bytes.Repeat([]byte{0x01}, 32)
		intermediate := bytes.Repeat([]byte{0x02}, 32)
		root := bytes.Repeat([]byte{0x03}, 32)
		raw, err := cose.EncodeX5Chain([][]byte{leaf, intermediate, root})
		if err != nil {
			t.Fatalf("EncodeX5Chain: %v", err)
		}
		head := cose.Append(nil, cose.X5ChainParam(raw, false))
		certs, ok, err := cose.DecodeX5Chain(head)
		if err != nil {
			t.Fatalf("DecodeX5Chain: %v", err)
		}
		if !ok || len(certs) != 3 {
			t.Fatalf("expected 3 certificates, got %d (ok=%v)", len(certs), ok)
		}
		if !bytes.Equal(certs[0], leaf) || !bytes.Equal(certs[1], intermediate) || !bytes.Equal(certs[2], root) {
			t.Error("decoded chain does not match the encoded order")
		}
	})

	t.Run("absent when the message carries no x5chain parameter", func(t *testing.T) {
		head := cose.NewBytesParam(cose.IntLabel(cose.LabelKid), []byte("k1"), false)
		_, ok, err := cose.DecodeX5Chain(head)
		if err != nil {
			t.Fatalf("DecodeX5Chain: %v", err)
		}
		if ok {
			t.Error("expected ok=false when no x5chain parameter is present")
		}
	})

	t.Run("rejects an empty certificate list", func(t *testing.T) {
		_, err := cose.EncodeX5Chain(nil)
		if kind, ok := cose.KindOf(err); !ok || kind != cose.KindWrongArity {
			t.Fatalf("expected KindWrongArity, got %v", kind)
		}
	})

	t.Run("round trips through full header encode/decode", func(t *testing.T) {
		cert := bytes.Repeat([]byte{0xbb}, 48)
		raw, err := cose.EncodeX5Chain([][]byte{cert})
		if err != nil {
			t.Fatalf("EncodeX5Chain: %v", err)
		}
		head := cose.NewIntParam(cose.IntLabel(cose.LabelAlg), int64(cose.AlgES256), true)
		head = cose.Append(head, cose.X5ChainParam(raw, false))

		protected, unprotected, err := cose.EncodeHeaders(head)
		if err != nil {
			t.Fatalf("EncodeHeaders: %v", err)
		}
		decoded, err := cose.DecodeHeaders(protected, unprotected, nil, nil, true)
		if err != nil {
			t.Fatalf("DecodeHeaders: %v", err)
		}
		certs, ok, err := cose.DecodeX5Chain(decoded)
		if err != nil {
			t.Fatalf("DecodeX5Chain: %v", err)
		}
		if !ok || len(certs) != 1 || !bytes.Equal(certs[0], cert) {
			t.Errorf("expected [%x], got ok=%v certs=%x", cert, ok, certs)
		}
	})
}

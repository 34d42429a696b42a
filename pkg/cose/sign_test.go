package cose_test

import (
	"bytes"
	"testing"

	"github.com/coseforge/cosecore/pkg/cose"
)

func TestSignVerifyMultiSigner(t *testing.T) {
	adapter := cose.NewStdAdapter()
	priv1, pub1 := mustGenerateP256(t)
	priv2, pub2 := mustGenerateP256(t)

	signer1 := &cose.MainSigner{Alg: cose.AlgES256, Kid: []byte("alice"), Key: priv1}
	signer2 := &cose.MainSigner{Alg: cose.AlgES256, Kid: []byte("bob"), Key: priv2}
	verifier1 := &cose.MainVerifier{Alg: cose.AlgES256, Kid: []byte("alice"), Key: pub1}
	verifier2 := &cose.MainVerifier{Alg: cose.AlgES256, Kid: []byte("bob"), Key: pub2}

	payload := []byte("countersigned message")

	t.Run("encodes one signature per signer", func(t *testing.T) {
		msg, err := cose.Sign(adapter, []cose.Signer{signer1, signer2}, payload, false, nil, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		decoded, err := cose.DecodeSign(msg, cose.Options{DecodeOnly: true})
		if err != nil {
			t.Fatalf("DecodeSign: %v", err)
		}
		if len(decoded.Signatures) != 2 {
			t.Fatalf("expected 2 signature elements, got %d", len(decoded.Signatures))
		}
	})

	t.Run("verifies against either signer's verifier", func(t *testing.T) {
		msg, err := cose.Sign(adapter, []cose.Signer{signer1, signer2}, payload, false, nil, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}

		decoded, v, err := cose.Verify(adapter, []cose.Verifier{verifier1}, msg, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Verify against alice: %v", err)
		}
		if v != verifier1 {
			t.Error("expected alice's verifier to be reported")
		}
		if !bytes.Equal(decoded.Payload, payload) {
			t.Error("payload mismatch")
		}

		_, v2, err := cose.Verify(adapter, []cose.Verifier{verifier2}, msg, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Verify against bob: %v", err)
		}
		if v2 != verifier2 {
			t.Error("expected bob's verifier to be reported")
		}
	})

	t.Run("fails when no verifier's kid matches any signature", func(t *testing.T) {
		msg, err := cose.Sign(adapter, []cose.Signer{signer1}, payload, false, nil, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		stranger := &cose.MainVerifier{Alg: cose.AlgES256, Kid: []byte("stranger"), Key: pub2}
		_, _, err = cose.Verify(adapter, []cose.Verifier{stranger}, msg, nil, cose.Options{})
		if err == nil {
			t.Fatal("expected verification to fail")
		}
	})

	t.Run("rejects empty signer list", func(t *testing.T) {
		_, err := cose.Sign(adapter, nil, payload, false, nil, nil, cose.Options{})
		if kind, ok := cose.KindOf(err); !ok || kind != cose.KindWrongArity {
			t.Fatalf("expected KindWrongArity, got %v", kind)
		}
	})
}

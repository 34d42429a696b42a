package cose_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/coseforge/cosecore/pkg/cose"
)

func mustGenerateP256(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating P-256 key: %v", err)
	}
	return priv, &priv.PublicKey
}

func TestSign1VerifyRoundTrip(t *testing.T) {
	adapter := cose.NewStdAdapter()
	priv, pub := mustGenerateP256(t)
	signer := &cose.MainSigner{Alg: cose.AlgES256, Kid: []byte("key-1"), Key: priv}
	verifier := &cose.MainVerifier{Alg: cose.AlgES256, Kid: []byte("key-1"), Key: pub}

	t.Run("verifies a freshly signed message", func(t *testing.T) {
		payload := []byte("a signed message")
		msg, err := cose.Sign1(adapter, signer, payload, false, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}

		decoded, v, err := cose.Verify1(adapter, []cose.Verifier{verifier}, msg, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Verify1: %v", err)
		}
		if v != verifier {
			t.Error("expected the single verifier to be returned")
		}
		if !bytes.Equal(decoded.Payload, payload) {
			t.Error("decoded payload does not match original")
		}
	})

	t.Run("round trips through the wire encoding with a CBOR tag", func(t *testing.T) {
		payload := []byte("tagged message")
		msg, err := cose.Sign1(adapter, signer, payload, false, nil, cose.Options{TagRequired: true})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}
		_, _, err = cose.Verify1(adapter, []cose.Verifier{verifier}, msg, nil, cose.Options{TagRequired: true})
		if err != nil {
			t.Fatalf("Verify1 with required tag: %v", err)
		}
		_, _, err = cose.Verify1(adapter, []cose.Verifier{verifier}, msg, nil, cose.Options{TagForbidden: true})
		if err == nil {
			t.Fatal("expected TagForbidden to reject a tagged message")
		}
	})

	t.Run("detached payload verifies when supplied out of band", func(t *testing.T) {
		payload := []byte("detached message")
		msg, err := cose.Sign1(adapter, signer, payload, true, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}
		decoded, _, err := cose.Verify1(adapter, []cose.Verifier{verifier}, msg, payload, cose.Options{})
		if err != nil {
			t.Fatalf("Verify1: %v", err)
		}
		if decoded.Payload != nil {
			t.Error("decoded message should carry no inline payload")
		}
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		payload := []byte("original")
		msg, err := cose.Sign1(adapter, signer, payload, true, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}
		_, _, err = cose.Verify1(adapter, []cose.Verifier{verifier}, msg, []byte("tampered"), cose.Options{})
		if err == nil {
			t.Fatal("expected verification failure on tampered detached payload")
		}
		if kind, ok := cose.KindOf(err); !ok || kind != cose.KindSigVerifyFailed {
			t.Fatalf("expected KindSigVerifyFailed, got %v", kind)
		}
	})

	t.Run("DecodeOnly skips signature verification", func(t *testing.T) {
		payload := []byte("inspect me")
		msg, err := cose.Sign1(adapter, signer, payload, false, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}
		decoded, v, err := cose.Verify1(adapter, nil, msg, nil, cose.Options{DecodeOnly: true})
		if err != nil {
			t.Fatalf("Verify1 DecodeOnly: %v", err)
		}
		if v != nil {
			t.Error("expected no verifier to be reported in DecodeOnly mode")
		}
		if !bytes.Equal(decoded.Payload, payload) {
			t.Error("payload should still be decoded")
		}
	})

	t.Run("wrong verifier kid falls through with a soft error", func(t *testing.T) {
		payload := []byte("message")
		msg, err := cose.Sign1(adapter, signer, payload, false, nil, cose.Options{})
		if err != nil {
			t.Fatalf("Sign1: %v", err)
		}
		otherVerifier := &cose.MainVerifier{Alg: cose.AlgES256, Kid: []byte("other-key"), Key: pub}
		_, _, err = cose.Verify1(adapter, []cose.Verifier{otherVerifier}, msg, nil, cose.Options{})
		if kind, ok := cose.KindOf(err); !ok || kind != cose.KindKidUnmatched {
			t.Fatalf("expected KindKidUnmatched, got %v (err=%v)", kind, err)
		}
	})
}

func TestSign1ShortCircuit(t *testing.T) {
	adapter := cose.NewStdAdapter()
	signer := &cose.ShortCircuitSigner{Alg: cose.AlgShortCircuit256, Kid: []byte("test")}
	verifier := &cose.ShortCircuitVerifier{Alg: cose.AlgShortCircuit256, Kid: []byte("test")}

	payload := []byte("bring-up message, no real key material")
	msg, err := cose.Sign1(adapter, signer, payload, false, nil, cose.Options{})
	if err != nil {
		t.Fatalf("Sign1: %v", err)
	}
	decoded, _, err := cose.Verify1(adapter, []cose.Verifier{verifier}, msg, nil, cose.Options{})
	if err != nil {
		t.Fatalf("Verify1: %v", err)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Error("decoded payload does not match original")
	}
}

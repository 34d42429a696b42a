package cose_test

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/coseforge/cosecore/pkg/cose"
)

func TestKWWrapRFC3394Vector(t *testing.T) {
	// RFC 3394 §4.1: wrap 128 bits of key data with a 128-bit KEK.
	kek, _ := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	keyData, _ := hex.DecodeString("00112233445566778899AABBCCDDEEFF")
	wantCiphertext, _ := hex.DecodeString("1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5")

	adapter := cose.NewStdAdapter()
	got, err := adapter.KWWrap(cose.AlgA128KW, kek, keyData)
	if err != nil {
		t.Fatalf("KWWrap: %v", err)
	}
	if !bytes.Equal(got, wantCiphertext) {
		t.Fatalf("KWWrap mismatch:\n got  %x\n want %x", got, wantCiphertext)
	}

	unwrapped, err := adapter.KWUnwrap(cose.AlgA128KW, kek, got)
	if err != nil {
		t.Fatalf("KWUnwrap: %v", err)
	}
	if !bytes.Equal(unwrapped, keyData) {
		t.Fatalf("KWUnwrap mismatch:\n got  %x\n want %x", unwrapped, keyData)
	}
}

func TestKWUnwrapRejectsTamperedCiphertext(t *testing.T) {
	adapter := cose.NewStdAdapter()
	kek, err := adapter.GetRandom(16)
	if err != nil {
		t.Fatalf("GetRandom: %v", err)
	}
	keyData, err := adapter.GetRandom(16)
	if err != nil {
		t.Fatalf("GetRandom: %v", err)
	}
	wrapped, err := adapter.KWWrap(cose.AlgA128KW, kek, keyData)
	if err != nil {
		t.Fatalf("KWWrap: %v", err)
	}
	wrapped[0] ^= 0xff
	_, err = adapter.KWUnwrap(cose.AlgA128KW, kek, wrapped)
	if kind, ok := cose.KindOf(err); !ok || kind != cose.KindDataAuthFailed {
		t.Fatalf("expected KindDataAuthFailed, got %v", kind)
	}
}

func TestHKDFDeterministic(t *testing.T) {
	adapter := cose.NewStdAdapter()
	ikm := []byte("shared secret")
	info := []byte("context info")

	out1, err := adapter.HKDF(cose.HashSHA256, nil, ikm, info, 32)
	if err != nil {
		t.Fatalf("HKDF: %v", err)
	}
	out2, err := adapter.HKDF(cose.HashSHA256, nil, ikm, info, 32)
	if err != nil {
		t.Fatalf("HKDF: %v", err)
	}
	if !bytes.Equal(out1, out2) {
		t.Error("HKDF should be deterministic for identical inputs")
	}

	out3, err := adapter.HKDF(cose.HashSHA256, nil, ikm, []byte("different info"), 32)
	if err != nil {
		t.Fatalf("HKDF: %v", err)
	}
	if bytes.Equal(out1, out3) {
		t.Error("distinct info should produce distinct output")
	}
}

func TestECDHSharedSecretAgreement(t *testing.T) {
	adapter := cose.NewStdAdapter()
	aPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key A: %v", err)
	}
	bPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key B: %v", err)
	}

	secretAB, err := adapter.ECDH(cose.CurveP256, aPriv, bPriv.PublicKey())
	if err != nil {
		t.Fatalf("ECDH A->B: %v", err)
	}
	secretBA, err := adapter.ECDH(cose.CurveP256, bPriv, aPriv.PublicKey())
	if err != nil {
		t.Fatalf("ECDH B->A: %v", err)
	}
	if !bytes.Equal(secretAB, secretBA) {
		t.Error("both sides should agree on the same shared secret")
	}
}

func TestEC2KeyExportImportRoundTrip(t *testing.T) {
	adapter := cose.NewStdAdapter()
	priv, pub, err := adapter.GenerateECKey(cose.CurveP256)
	if err != nil {
		t.Fatalf("GenerateECKey: %v", err)
	}
	_ = priv
	crv, x, y, err := adapter.ExportEC2Key(pub)
	if err != nil {
		t.Fatalf("ExportEC2Key: %v", err)
	}
	if crv != cose.CurveP256 {
		t.Fatalf("expected CurveP256, got %v", crv)
	}
	imported, err := adapter.ImportEC2PublicKey(cose.CurveP256, x, y)
	if err != nil {
		t.Fatalf("ImportEC2PublicKey: %v", err)
	}
	crv2, x2, y2, err := adapter.ExportEC2Key(imported)
	if err != nil {
		t.Fatalf("ExportEC2Key: %v", err)
	}
	if crv2 != crv || !bytes.Equal(x2, x) || !bytes.Equal(y2, y) {
		t.Error("re-imported key does not match the original coordinates")
	}
}

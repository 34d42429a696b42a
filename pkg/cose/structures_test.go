package cose_test

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/coseforge/cosecore/pkg/cose"
)

func TestBuildSigStructure(t *testing.T) {
	t.Run("Sign1 structure has 4 elements with correct context", func(t *testing.T) {
		b, err := cose.BuildSigStructure(cose.ContextSignature1, []byte{0xa1, 0x01, 0x26}, nil, nil, []byte("payload"))
		if err != nil {
			t.Fatalf("BuildSigStructure: %v", err)
		}
		var arr []interface{}
		if err := cbor.Unmarshal(b, &arr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(arr) != 4 {
			t.Fatalf("expected 4 elements, got %d", len(arr))
		}
		if arr[0] != cose.ContextSignature1 {
			t.Errorf("expected context %q, got %v", cose.ContextSignature1, arr[0])
		}
	})

	t.Run("Sign structure has 5 elements when sign-protected is present", func(t *testing.T) {
		b, err := cose.BuildSigStructure(cose.ContextSignature, []byte{0xa0}, []byte{0xa1, 0x01, 0x26}, nil, []byte("payload"))
		if err != nil {
			t.Fatalf("BuildSigStructure: %v", err)
		}
		var arr []interface{}
		if err := cbor.Unmarshal(b, &arr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(arr) != 5 {
			t.Fatalf("expected 5 elements, got %d", len(arr))
		}
	})

	t.Run("nil external_aad and payload encode as empty byte strings", func(t *testing.T) {
		b, err := cose.BuildSigStructure(cose.ContextSignature1, []byte{0xa0}, nil, nil, nil)
		if err != nil {
			t.Fatalf("BuildSigStructure: %v", err)
		}
		var arr []interface{}
		if err := cbor.Unmarshal(b, &arr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		aad, ok := arr[2].([]byte)
		if !ok || len(aad) != 0 {
			t.Errorf("expected empty external_aad, got %v", arr[2])
		}
		payload, ok := arr[3].([]byte)
		if !ok || len(payload) != 0 {
			t.Errorf("expected empty payload, got %v", arr[3])
		}
	})
}

func TestBuildEncStructure(t *testing.T) {
	b1, err := cose.BuildEncStructure(cose.ContextEncrypt0, []byte{0xa1, 0x01, 0x01}, nil)
	if err != nil {
		t.Fatalf("BuildEncStructure: %v", err)
	}
	b2, err := cose.BuildEncStructure(cose.ContextEncrypt0, []byte{0xa1, 0x01, 0x01}, []byte{})
	if err != nil {
		t.Fatalf("BuildEncStructure: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("nil and empty external_aad should produce identical encodings")
	}

	b3, err := cose.BuildEncStructure(cose.ContextEncrypt0, []byte{0xa1, 0x01, 0x01}, []byte("aad"))
	if err != nil {
		t.Fatalf("BuildEncStructure: %v", err)
	}
	if bytes.Equal(b1, b3) {
		t.Error("distinct external_aad should change the structure bytes")
	}
}

func TestBuildMACStructure(t *testing.T) {
	b, err := cose.BuildMACStructure(cose.ContextMAC0, []byte{0xa1, 0x01, 0x05}, nil, []byte("payload"))
	if err != nil {
		t.Fatalf("BuildMACStructure: %v", err)
	}
	var arr []interface{}
	if err := cbor.Unmarshal(b, &arr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(arr) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(arr))
	}
	if arr[0] != cose.ContextMAC0 {
		t.Errorf("expected context %q, got %v", cose.ContextMAC0, arr[0])
	}
}

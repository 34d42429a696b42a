package cose

import "github.com/fxamacker/cbor/v2"

// Label for the ephemeral sender public key carried in a recipient's
// unprotected header, RFC 9053 §5.1 ("-1: ephemeral key"). This is the
// legacy bare COSE_Key-map form of the ESDH/HPKE sender's ephemeral key.
const LabelEphemeralKey int64 = -1

// Label for the HPKE_sender_info array form of the same ephemeral-key
// material (draft-ietf-cose-hpke). Carries a one-element array wrapping
// the ephemeral public key as a COSE_Key map, rather than the bare map
// LabelEphemeralKey uses.
const LabelHPKESenderInfo int64 = -4

// RecipientKind discriminates the COSE_Recipient variants this library
// implements (the COSE_Recipient tree, RFC 9052 §5.1).
type RecipientKind byte

const (
	RecipientKindDirect RecipientKind = iota
	RecipientKindAESKW
	RecipientKindESDH
	RecipientKindHPKE
)

// RecipientEncoder builds one COSE_Recipient entry ([protected,
// unprotected, ciphertext]) at message-encode time, wrapping (or standing
// in for, in the Direct case) the message's content-encryption/MAC key.
type RecipientEncoder interface {
	Kind() RecipientKind
	Algorithm() int64
	KeyID() []byte
	Encode(adapter Adapter, cek []byte) (head *Param, ciphertext []byte, err error)
}

// RecipientDecoder recovers a CEK from a decoded COSE_Recipient entry.
// Matches lets a dispatch loop skip a decoder whose kid doesn't match
// without attempting any cryptography.
type RecipientDecoder interface {
	Kind() RecipientKind
	Algorithm() int64
	Matches(headerKid []byte) bool
	Decode(adapter Adapter, head *Param, ciphertext []byte) (cek []byte, err error)
}

// RecipientStructure is the decoded [protected, unprotected, ciphertext]
// form of one COSE_Recipient.
type RecipientStructure struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Ciphertext  []byte
	Head        *Param
}

// EncodeRecipient runs enc and returns the finished
// [protected, unprotected, ciphertext] triple ready to place in a
// COSE_Encrypt/COSE_Mac recipients array.
func EncodeRecipient(adapter Adapter, enc RecipientEncoder, cek []byte) ([]interface{}, error) {
	head, ciphertext, err := enc.Encode(adapter, cek)
	if err != nil {
		return nil, err
	}
	algParam := NewIntParam(IntLabel(LabelAlg), enc.Algorithm(), true)
	head = Append(algParam, head)
	if len(enc.KeyID()) > 0 && Find(head, IntLabel(LabelKid)) == nil {
		head = Append(head, NewBytesParam(IntLabel(LabelKid), enc.KeyID(), false))
	}
	protected, unprotected, err := EncodeHeaders(head)
	if err != nil {
		return nil, err
	}
	return []interface{}{protected, unprotected, orEmpty(ciphertext)}, nil
}

// DecodeRecipientRaw parses one raw [protected, unprotected, ciphertext]
// recipient entry (already split from its parent array by the caller) into
// a RecipientStructure with its header parameters decoded.
func DecodeRecipientRaw(protected []byte, unprotected map[interface{}]interface{}, ciphertext []byte, pool *Pool, enforceCrit bool) (*RecipientStructure, error) {
	head, err := DecodeHeaders(protected, unprotected, pool, nil, enforceCrit)
	if err != nil {
		return nil, err
	}
	return &RecipientStructure{Protected: protected, Unprotected: unprotected, Ciphertext: ciphertext, Head: head}, nil
}

// DirectEncoder implements the "Direct" recipient algorithm (alg -6): the
// recipient's own key material stands for the CEK, and the encoded
// ciphertext field is empty. Encode only checks that Key equals the cek it
// is given; Encrypt and Mac generate a random CEK/MAC key, so a
// DirectEncoder passed to them fails with KindKeySizeMismatch.
type DirectEncoder struct {
	Kid []byte
	Key []byte // must equal the CEK the caller intends to use
}

func (d *DirectEncoder) Kind() RecipientKind { return RecipientKindDirect }
func (d *DirectEncoder) Algorithm() int64    { return AlgDirect }
func (d *DirectEncoder) KeyID() []byte       { return d.Kid }

func (d *DirectEncoder) Encode(adapter Adapter, cek []byte) (*Param, []byte, error) {
	if len(d.Key) != len(cek) || string(d.Key) != string(cek) {
		return nil, nil, newErr(KindKeySizeMismatch, "DirectEncoder.Encode", nil)
	}
	return nil, nil, nil
}

// DirectDecoder recovers the CEK as its own configured key material.
type DirectDecoder struct {
	Kid []byte
	Key []byte
}

func (d *DirectDecoder) Kind() RecipientKind     { return RecipientKindDirect }
func (d *DirectDecoder) Algorithm() int64        { return AlgDirect }
func (d *DirectDecoder) Matches(kid []byte) bool { return kidMatches(d.Kid, kid) }

func (d *DirectDecoder) Decode(adapter Adapter, head *Param, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != 0 {
		return nil, newErr(KindInvalidLength, "DirectDecoder.Decode", nil)
	}
	return d.Key, nil
}

// encodeEphemeralKeyParam wraps an ephemeral public key's COSE_Key bytes in
// the canonical HPKE_sender_info array form (label -4), used by both ESDH
// and HPKE recipient encoders.
func encodeEphemeralKeyParam(coseKeyBytes []byte) (*Param, error) {
	raw, err := canonMarshal([]interface{}{coseKeyBytes})
	if err != nil {
		return nil, newErr(KindFormat, "encodeEphemeralKeyParam", err)
	}
	return NewRawParam(IntLabel(LabelHPKESenderInfo), raw, false), nil
}

// decodeEphemeralKeyParam recovers an ephemeral public key's COSE_Key bytes
// from a recipient's decoded header, accepting either the HPKE_sender_info
// array form (label -4) or the legacy bare COSE_Key map form (label -1).
func decodeEphemeralKeyParam(head *Param) ([]byte, error) {
	if n := Find(head, IntLabel(LabelHPKESenderInfo)); n != nil {
		var arr []interface{}
		if err := cbor.Unmarshal(n.Bytes, &arr); err != nil {
			return nil, newErr(KindFormat, "decodeEphemeralKeyParam", err)
		}
		if len(arr) == 0 {
			return nil, newErr(KindWrongArity, "decodeEphemeralKeyParam", nil)
		}
		b, ok := arr[0].([]byte)
		if !ok {
			return nil, newErr(KindWrongElementType, "decodeEphemeralKeyParam", nil)
		}
		return b, nil
	}
	if n := Find(head, IntLabel(LabelEphemeralKey)); n != nil {
		return n.Bytes, nil
	}
	return nil, newErr(KindFormat, "decodeEphemeralKeyParam", nil)
}

func kidMatches(configured, incoming []byte) bool {
	if len(configured) == 0 || len(incoming) == 0 {
		return true
	}
	if len(configured) != len(incoming) {
		return false
	}
	for i := range configured {
		if configured[i] != incoming[i] {
			return false
		}
	}
	return true
}

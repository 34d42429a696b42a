package cose

import "hash"

// Key is an opaque key handle passed between this package and an Adapter.
// The core engines never inspect a Key's concrete type; only the Adapter
// implementation that produced or consumes it does.
type Key = interface{}

// Adapter is the external collaborator this library delegates every actual
// cryptographic operation to. The core message engines
// (Sign1, Encrypt0, Mac0, recipients, ...) are written entirely against
// this interface and hold no cryptographic code of their own; adapter_std.go
// provides the stdlib-backed implementation used by default.
type Adapter interface {
	// HashStart begins a streaming digest. HashFinish returns the digest
	// and invalidates h.
	HashStart(alg HashAlg) (hash.Hash, error)
	HashFinish(h hash.Hash) ([]byte, error)

	// HMACSetup begins a streaming HMAC under key. HMACComputeFinish
	// returns the tag; HMACValidateFinish compares against an expected tag
	// in constant time and returns a DataAuthFailed error on mismatch.
	HMACSetup(key []byte, alg HashAlg) (hash.Hash, error)
	HMACComputeFinish(m hash.Hash) ([]byte, error)
	HMACValidateFinish(m hash.Hash, expected []byte) error

	// Sign produces a signature over tbs (a digest, or the raw
	// to-be-signed bytes for self-hashing algorithms). Verify checks sig
	// against tbs and returns SigVerifyFailed on mismatch. SigSize reports
	// the fixed signature length an algorithm/key pair produces, used to
	// size r||s output buffers ahead of signing.
	Sign(alg SigAlg, key Key, tbs []byte) ([]byte, error)
	Verify(alg SigAlg, key Key, tbs []byte, sig []byte) error
	SigSize(alg SigAlg, key Key) (int, error)

	// AEADEncrypt/AEADDecrypt implement the content-encryption algorithms.
	// The returned/consumed ciphertext includes the authentication tag.
	AEADEncrypt(alg ContentAlg, key, nonce, aad, plaintext []byte) ([]byte, error)
	AEADDecrypt(alg ContentAlg, key, nonce, aad, ciphertext []byte) ([]byte, error)

	// KWWrap/KWUnwrap implement RFC 3394 AES Key Wrap.
	KWWrap(alg KWAlg, kek, plaintext []byte) ([]byte, error)
	KWUnwrap(alg KWAlg, kek, ciphertext []byte) ([]byte, error)

	// HKDF implements RFC 5869 HKDF-Extract-and-Expand.
	HKDF(hashAlg HashAlg, salt, ikm, info []byte, outLen int) ([]byte, error)

	// ECDH computes the shared secret for the given curve. GenerateECKey
	// produces an ephemeral key pair on that curve (used by ESDH/HPKE
	// senders). ImportEC2PublicKey/ExportEC2Key convert between the
	// adapter's internal key representation and raw EC2 (x, y) coordinates
	// for COSE_Key marshaling.
	ECDH(curve Curve, priv, pub Key) ([]byte, error)
	GenerateECKey(curve Curve) (priv, pub Key, err error)
	ImportEC2PublicKey(curve Curve, x, y []byte) (Key, error)
	ExportEC2Key(pub Key) (curve Curve, x, y []byte, err error)

	// MakeSymmetricKey/ExportSymmetricKey wrap/unwrap a raw symmetric key
	// as a Key handle.
	MakeSymmetricKey(raw []byte) (Key, error)
	ExportSymmetricKey(key Key) ([]byte, error)

	// GetRandom returns n cryptographically random bytes.
	GetRandom(n int) ([]byte, error)

	// IsAlgorithmSupported reports whether this adapter implements the
	// given IANA COSE algorithm identifier, letting engines return a soft
	// Unsupported* error rather than attempting the operation.
	IsAlgorithmSupported(alg int64) bool
}

package cose

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"hash"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// SymmetricKey is the Key handle this adapter uses for AEAD/HMAC/KW keys.
type SymmetricKey []byte

// StdAdapter is the default Adapter, built entirely on the Go standard
// library plus golang.org/x/crypto/hkdf for RFC 5869 HKDF. It encodes
// ECDSA signatures as fixed-width r||s (not ASN.1 DER) across the full
// algorithm table.
type StdAdapter struct{}

// NewStdAdapter returns the default stdlib-backed Adapter.
func NewStdAdapter() *StdAdapter { return &StdAdapter{} }

func hashFuncFor(alg HashAlg) (func() hash.Hash, int, error) {
	switch alg {
	case HashSHA256:
		return sha256.New, sha256.Size, nil
	case HashSHA384:
		return sha512.New384, sha512.Size384, nil
	case HashSHA512:
		return sha512.New, sha512.Size, nil
	default:
		return nil, 0, newErr(KindUnsupportedHash, "hashFuncFor", nil)
	}
}

func (a *StdAdapter) HashStart(alg HashAlg) (hash.Hash, error) {
	f, _, err := hashFuncFor(alg)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

func (a *StdAdapter) HashFinish(h hash.Hash) ([]byte, error) {
	return h.Sum(nil), nil
}

func (a *StdAdapter) HMACSetup(key []byte, alg HashAlg) (hash.Hash, error) {
	f, _, err := hashFuncFor(alg)
	if err != nil {
		return nil, err
	}
	return hmac.New(f, key), nil
}

func (a *StdAdapter) HMACComputeFinish(m hash.Hash) ([]byte, error) {
	return m.Sum(nil), nil
}

func (a *StdAdapter) HMACValidateFinish(m hash.Hash, expected []byte) error {
	got := m.Sum(nil)
	if subtle.ConstantTimeCompare(got, expected) != 1 {
		return newErr(KindDataAuthFailed, "HMACValidateFinish", nil)
	}
	return nil
}

func (a *StdAdapter) Sign(alg SigAlg, key Key, tbs []byte) ([]byte, error) {
	switch alg {
	case AlgES256, AlgES384, AlgES512:
		priv, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, newErr(KindWrongKeyType, "Sign", nil)
		}
		r, s, err := ecdsa.Sign(rand.Reader, priv, tbs)
		if err != nil {
			return nil, newErr(KindSigFailed, "Sign", err)
		}
		byteLen := (priv.Curve.Params().BitSize + 7) / 8
		return encodeFixedRS(r, s, byteLen), nil
	case AlgPS256, AlgPS384, AlgPS512:
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, newErr(KindWrongKeyType, "Sign", nil)
		}
		_, hLen, _ := hashFuncFor(pssHash(alg))
		sig, err := rsa.SignPSS(rand.Reader, priv, pssCryptoHash(alg), tbs, &rsa.PSSOptions{SaltLength: hLen, Hash: pssCryptoHash(alg)})
		if err != nil {
			return nil, newErr(KindSigFailed, "Sign", err)
		}
		return sig, nil
	case AlgEdDSA:
		priv, ok := key.(ed25519.PrivateKey)
		if !ok {
			return nil, newErr(KindWrongKeyType, "Sign", nil)
		}
		return ed25519.Sign(priv, tbs), nil
	case AlgShortCircuit256, AlgShortCircuit384, AlgShortCircuit512:
		return append(append([]byte{}, tbs...), tbs...), nil
	default:
		return nil, newErr(KindUnsupportedSigningAlgorithm, "Sign", nil)
	}
}

func (a *StdAdapter) Verify(alg SigAlg, key Key, tbs []byte, sig []byte) error {
	switch alg {
	case AlgES256, AlgES384, AlgES512:
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return newErr(KindWrongKeyType, "Verify", nil)
		}
		byteLen := (pub.Curve.Params().BitSize + 7) / 8
		if len(sig) != 2*byteLen {
			return newErr(KindSigVerifyFailed, "Verify", nil)
		}
		r := new(big.Int).SetBytes(sig[:byteLen])
		s := new(big.Int).SetBytes(sig[byteLen:])
		if !ecdsa.Verify(pub, tbs, r, s) {
			return newErr(KindSigVerifyFailed, "Verify", nil)
		}
		return nil
	case AlgPS256, AlgPS384, AlgPS512:
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return newErr(KindWrongKeyType, "Verify", nil)
		}
		_, hLen, _ := hashFuncFor(pssHash(alg))
		if err := rsa.VerifyPSS(pub, pssCryptoHash(alg), tbs, sig, &rsa.PSSOptions{SaltLength: hLen, Hash: pssCryptoHash(alg)}); err != nil {
			return newErr(KindSigVerifyFailed, "Verify", err)
		}
		return nil
	case AlgEdDSA:
		pub, ok := key.(ed25519.PublicKey)
		if !ok {
			return newErr(KindWrongKeyType, "Verify", nil)
		}
		if !ed25519.Verify(pub, tbs, sig) {
			return newErr(KindSigVerifyFailed, "Verify", nil)
		}
		return nil
	case AlgShortCircuit256, AlgShortCircuit384, AlgShortCircuit512:
		want := append(append([]byte{}, tbs...), tbs...)
		if subtle.ConstantTimeCompare(want, sig) != 1 {
			return newErr(KindSigVerifyFailed, "Verify", nil)
		}
		return nil
	default:
		return newErr(KindUnsupportedSigningAlgorithm, "Verify", nil)
	}
}

func (a *StdAdapter) SigSize(alg SigAlg, key Key) (int, error) {
	switch alg {
	case AlgES256, AlgES384, AlgES512:
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			if priv, ok2 := key.(*ecdsa.PrivateKey); ok2 {
				pub = &priv.PublicKey
			} else {
				return 0, newErr(KindWrongKeyType, "SigSize", nil)
			}
		}
		return 2 * ((pub.Curve.Params().BitSize + 7) / 8), nil
	case AlgEdDSA:
		return ed25519.SignatureSize, nil
	case AlgPS256, AlgPS384, AlgPS512:
		if pub, ok := key.(*rsa.PublicKey); ok {
			return pub.Size(), nil
		}
		if priv, ok := key.(*rsa.PrivateKey); ok {
			return priv.Size(), nil
		}
		return 0, newErr(KindWrongKeyType, "SigSize", nil)
	default:
		return 0, newErr(KindUnsupportedSigningAlgorithm, "SigSize", nil)
	}
}

func encodeFixedRS(r, s *big.Int, byteLen int) []byte {
	out := make([]byte, 2*byteLen)
	r.FillBytes(out[:byteLen])
	s.FillBytes(out[byteLen:])
	return out
}

func pssHash(alg SigAlg) HashAlg {
	switch alg {
	case AlgPS384:
		return HashSHA384
	case AlgPS512:
		return HashSHA512
	default:
		return HashSHA256
	}
}

func pssCryptoHash(alg SigAlg) crypto.Hash {
	switch alg {
	case AlgPS384:
		return crypto.SHA384
	case AlgPS512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}

func (a *StdAdapter) AEADEncrypt(alg ContentAlg, key, nonce, aad, plaintext []byte) ([]byte, error) {
	aead, err := gcmFor(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, newErr(KindInvalidLength, "AEADEncrypt", nil)
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func (a *StdAdapter) AEADDecrypt(alg ContentAlg, key, nonce, aad, ciphertext []byte) ([]byte, error) {
	aead, err := gcmFor(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, newErr(KindInvalidLength, "AEADDecrypt", nil)
	}
	pt, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, newErr(KindDataAuthFailed, "AEADDecrypt", err)
	}
	return pt, nil
}

func gcmFor(alg ContentAlg, key []byte) (cipher.AEAD, error) {
	keyLen, ok := map[ContentAlg]int{AlgA128GCM: 16, AlgA192GCM: 24, AlgA256GCM: 32}[alg]
	if !ok {
		return nil, newErr(KindUnsupportedEncryptionAlgorithm, "gcmFor", nil)
	}
	if len(key) != keyLen {
		return nil, newErr(KindKeySizeMismatch, "gcmFor", nil)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newErr(KindEncryptFailed, "gcmFor", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, newErr(KindEncryptFailed, "gcmFor", err)
	}
	return aead, nil
}

// kwIV is the RFC 3394 §2.2.3.1 default integrity check register.
var kwIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

func (a *StdAdapter) KWWrap(alg KWAlg, kek, plaintext []byte) ([]byte, error) {
	if len(plaintext)%8 != 0 || len(plaintext) < 16 {
		return nil, newErr(KindInvalidLength, "KWWrap", nil)
	}
	if err := checkKWKeyLen(alg, kek); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, newErr(KindEncryptFailed, "KWWrap", err)
	}
	n := len(plaintext) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], plaintext[i*8:(i+1)*8])
	}
	var a8 [8]byte
	copy(a8[:], kwIV[:])

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a8[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf, buf)
			t := uint64(n*j + i)
			var tbuf [8]byte
			binary.BigEndian.PutUint64(tbuf[:], t)
			for k := range a8 {
				a8[k] = buf[k] ^ tbuf[k]
			}
			copy(r[i-1][:], buf[8:])
		}
	}
	out := make([]byte, 8+len(plaintext))
	copy(out[:8], a8[:])
	for i := 0; i < n; i++ {
		copy(out[8+i*8:], r[i][:])
	}
	return out, nil
}

func (a *StdAdapter) KWUnwrap(alg KWAlg, kek, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%8 != 0 || len(ciphertext) < 24 {
		return nil, newErr(KindInvalidLength, "KWUnwrap", nil)
	}
	if err := checkKWKeyLen(alg, kek); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, newErr(KindDecryptFailed, "KWUnwrap", err)
	}
	n := len(ciphertext)/8 - 1
	var a8 [8]byte
	copy(a8[:], ciphertext[:8])
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], ciphertext[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			var tbuf [8]byte
			binary.BigEndian.PutUint64(tbuf[:], t)
			var xored [8]byte
			for k := range a8 {
				xored[k] = a8[k] ^ tbuf[k]
			}
			copy(buf[:8], xored[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf, buf)
			copy(a8[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}
	if subtle.ConstantTimeCompare(a8[:], kwIV[:]) != 1 {
		return nil, newErr(KindDataAuthFailed, "KWUnwrap", nil)
	}
	out := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		out = append(out, r[i][:]...)
	}
	return out, nil
}

func checkKWKeyLen(alg KWAlg, kek []byte) error {
	want, ok := map[KWAlg]int{AlgA128KW: 16, AlgA192KW: 24, AlgA256KW: 32}[alg]
	if !ok {
		return newErr(KindUnsupportedCipherAlgorithm, "checkKWKeyLen", nil)
	}
	if len(kek) != want {
		return newErr(KindKeySizeMismatch, "checkKWKeyLen", nil)
	}
	return nil
}

func (a *StdAdapter) HKDF(hashAlg HashAlg, salt, ikm, info []byte, outLen int) ([]byte, error) {
	f, _, err := hashFuncFor(hashAlg)
	if err != nil {
		return nil, err
	}
	r := hkdf.New(f, ikm, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, newErr(KindHkdfFail, "HKDF", err)
	}
	return out, nil
}

func (a *StdAdapter) ECDH(curve Curve, priv, pub Key) ([]byte, error) {
	pr, ok := priv.(*ecdh.PrivateKey)
	if !ok {
		return nil, newErr(KindWrongKeyType, "ECDH", nil)
	}
	pu, ok := pub.(*ecdh.PublicKey)
	if !ok {
		return nil, newErr(KindWrongKeyType, "ECDH", nil)
	}
	secret, err := pr.ECDH(pu)
	if err != nil {
		return nil, newErr(KindUnsupportedKeyExchangeAlgorithm, "ECDH", err)
	}
	return secret, nil
}

func ecdhCurveFor(c Curve) (ecdh.Curve, error) {
	switch c {
	case CurveP256:
		return ecdh.P256(), nil
	case CurveP384:
		return ecdh.P384(), nil
	case CurveP521:
		return ecdh.P521(), nil
	case CurveX25519:
		return ecdh.X25519(), nil
	default:
		return nil, newErr(KindWrongCurve, "ecdhCurveFor", nil)
	}
}

func (a *StdAdapter) GenerateECKey(curve Curve) (Key, Key, error) {
	c, err := ecdhCurveFor(curve)
	if err != nil {
		return nil, nil, err
	}
	priv, err := c.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, newErr(KindRngFailed, "GenerateECKey", err)
	}
	return priv, priv.PublicKey(), nil
}

func (a *StdAdapter) ImportEC2PublicKey(curve Curve, x, y []byte) (Key, error) {
	c, err := ecdhCurveFor(curve)
	if err != nil {
		return nil, err
	}
	if curve == CurveX25519 {
		pub, err := c.NewPublicKey(x)
		if err != nil {
			return nil, newErr(KindKeySizeMismatch, "ImportEC2PublicKey", err)
		}
		return pub, nil
	}
	point := append([]byte{0x04}, x...)
	point = append(point, y...)
	pub, err := c.NewPublicKey(point)
	if err != nil {
		return nil, newErr(KindKeySizeMismatch, "ImportEC2PublicKey", err)
	}
	return pub, nil
}

func (a *StdAdapter) ExportEC2Key(pub Key) (Curve, []byte, []byte, error) {
	p, ok := pub.(*ecdh.PublicKey)
	if !ok {
		return 0, nil, nil, newErr(KindWrongKeyType, "ExportEC2Key", nil)
	}
	b := p.Bytes()
	switch p.Curve() {
	case ecdh.X25519():
		return CurveX25519, b, nil, nil
	case ecdh.P256():
		return CurveP256, b[1:33], b[33:65], nil
	case ecdh.P384():
		return CurveP384, b[1:49], b[49:97], nil
	case ecdh.P521():
		return CurveP521, b[1:67], b[67:133], nil
	default:
		return 0, nil, nil, newErr(KindWrongCurve, "ExportEC2Key", nil)
	}
}

func (a *StdAdapter) MakeSymmetricKey(raw []byte) (Key, error) {
	return SymmetricKey(append([]byte{}, raw...)), nil
}

func (a *StdAdapter) ExportSymmetricKey(key Key) ([]byte, error) {
	sk, ok := key.(SymmetricKey)
	if !ok {
		return nil, newErr(KindWrongKeyType, "ExportSymmetricKey", nil)
	}
	return []byte(sk), nil
}

func (a *StdAdapter) GetRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, newErr(KindRngFailed, "GetRandom", err)
	}
	return b, nil
}

func (a *StdAdapter) IsAlgorithmSupported(alg int64) bool {
	switch SigAlg(alg) {
	case AlgES256, AlgES384, AlgES512, AlgEdDSA, AlgPS256, AlgPS384, AlgPS512,
		AlgShortCircuit256, AlgShortCircuit384, AlgShortCircuit512:
		return true
	}
	switch ContentAlg(alg) {
	case AlgA128GCM, AlgA192GCM, AlgA256GCM:
		return true
	}
	switch MACAlg(alg) {
	case AlgHMAC256, AlgHMAC384, AlgHMAC512:
		return true
	}
	switch KWAlg(alg) {
	case AlgA128KW, AlgA192KW, AlgA256KW:
		return true
	}
	switch KeyAgreeAlg(alg) {
	case AlgECDHESA128KW, AlgECDHESA192KW, AlgECDHESA256KW:
		return true
	}
	return alg == AlgDirect || alg == AlgHPKEBase
}

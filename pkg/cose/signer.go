package cose

// SignerKind discriminates which concrete signing backend a Signer wraps.
// Go has no class hierarchy to dispatch on, so Signer/Verifier are ordinary
// interfaces and Kind is kept only as a diagnostic discriminant.
type SignerKind byte

const (
	SignerKindMain SignerKind = iota
	SignerKindShortCircuit
)

// Signer produces a signature over an already-composed Sig_structure byte
// string, using whatever algorithm/key it was constructed with, and
// contributes the header parameters of its own signature: `alg` in the
// protected bucket and, when set, `kid` in the unprotected bucket.
type Signer interface {
	Kind() SignerKind
	Algorithm() SigAlg
	KeyID() []byte
	ProtectedParams() *Param
	Sign(adapter Adapter, toBeSigned []byte) ([]byte, error)
}

// Verifier checks a signature against an already-composed Sig_structure
// byte string. Matches lets a dispatch loop (sign1.go, sign.go) skip a
// verifier whose kid doesn't match the message's kid without invoking any
// cryptography; Verify itself returns SigVerifyFailed (hard) on a bad
// signature, or an Unsupported* error (soft) if asked to check an
// algorithm it doesn't implement.
type Verifier interface {
	Algorithm() SigAlg
	KeyID() []byte
	Matches(headerKid []byte) bool
	Verify(adapter Adapter, toBeSigned []byte, sig []byte) error
}

// MainSigner is the production Signer backed by a real asymmetric key.
type MainSigner struct {
	Alg SigAlg
	Kid []byte
	Key Key
}

func (s *MainSigner) Kind() SignerKind  { return SignerKindMain }
func (s *MainSigner) Algorithm() SigAlg { return s.Alg }
func (s *MainSigner) KeyID() []byte     { return s.Kid }

func (s *MainSigner) ProtectedParams() *Param {
	head := NewIntParam(IntLabel(LabelAlg), int64(s.Alg), true)
	if len(s.Kid) > 0 {
		head = Append(head, NewBytesParam(IntLabel(LabelKid), s.Kid, false))
	}
	return head
}

func (s *MainSigner) Sign(adapter Adapter, toBeSigned []byte) ([]byte, error) {
	if !adapter.IsAlgorithmSupported(int64(s.Alg)) {
		return nil, newErr(KindUnsupportedSigningAlgorithm, "MainSigner.Sign", nil)
	}
	hashAlg, selfHashing, ok := HashForSig(s.Alg)
	if !ok {
		return nil, newErr(KindUnsupportedSigningAlgorithm, "MainSigner.Sign", nil)
	}
	tbs, err := ComputeTBS(adapter, hashAlg, toBeSigned, selfHashing)
	if err != nil {
		return nil, err
	}
	return adapter.Sign(s.Alg, s.Key, tbs)
}

// MainVerifier is the production Verifier backed by a real asymmetric key.
type MainVerifier struct {
	Alg SigAlg
	Kid []byte
	Key Key
}

func (v *MainVerifier) Algorithm() SigAlg { return v.Alg }
func (v *MainVerifier) KeyID() []byte     { return v.Kid }

func (v *MainVerifier) Matches(headerKid []byte) bool {
	if len(v.Kid) == 0 || len(headerKid) == 0 {
		return true
	}
	if len(v.Kid) != len(headerKid) {
		return false
	}
	for i := range v.Kid {
		if v.Kid[i] != headerKid[i] {
			return false
		}
	}
	return true
}

func (v *MainVerifier) Verify(adapter Adapter, toBeSigned []byte, sig []byte) error {
	if !adapter.IsAlgorithmSupported(int64(v.Alg)) {
		return newErr(KindUnsupportedSigningAlgorithm, "MainVerifier.Verify", nil)
	}
	hashAlg, selfHashing, ok := HashForSig(v.Alg)
	if !ok {
		return newErr(KindUnsupportedSigningAlgorithm, "MainVerifier.Verify", nil)
	}
	tbs, err := ComputeTBS(adapter, hashAlg, toBeSigned, selfHashing)
	if err != nil {
		return err
	}
	return adapter.Verify(v.Alg, v.Key, tbs, sig)
}

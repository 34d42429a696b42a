package cose

// ShortCircuitSigner/ShortCircuitVerifier implement the bring-up/test-only
// "short-circuit" signature scheme: the "signature" is
// just the to-be-signed digest duplicated to fill the expected signature
// size, so a codec round trip can be exercised end to end with no real key
// material. Never use these outside of tests. StdAdapter also signs and
// verifies the AlgShortCircuit* values for MainSigner/MainVerifier, so a
// short-circuit signature is produced only when a caller selects one of
// those algorithms.
type ShortCircuitSigner struct {
	Alg SigAlg
	Kid []byte
}

func (s *ShortCircuitSigner) Kind() SignerKind  { return SignerKindShortCircuit }
func (s *ShortCircuitSigner) Algorithm() SigAlg { return s.Alg }
func (s *ShortCircuitSigner) KeyID() []byte     { return s.Kid }

func (s *ShortCircuitSigner) ProtectedParams() *Param {
	head := NewIntParam(IntLabel(LabelAlg), int64(s.Alg), true)
	if len(s.Kid) > 0 {
		head = Append(head, NewBytesParam(IntLabel(LabelKid), s.Kid, false))
	}
	return head
}

func (s *ShortCircuitSigner) Sign(adapter Adapter, toBeSigned []byte) ([]byte, error) {
	hashAlg, ok := shortCircuitHash(s.Alg)
	if !ok {
		return nil, newErr(KindUnsupportedSigningAlgorithm, "ShortCircuitSigner.Sign", nil)
	}
	tbs, err := ComputeTBS(adapter, hashAlg, toBeSigned, false)
	if err != nil {
		return nil, err
	}
	return adapter.Sign(s.Alg, nil, tbs)
}

type ShortCircuitVerifier struct {
	Alg SigAlg
	Kid []byte
}

func (v *ShortCircuitVerifier) Algorithm() SigAlg             { return v.Alg }
func (v *ShortCircuitVerifier) KeyID() []byte                 { return v.Kid }
func (v *ShortCircuitVerifier) Matches(headerKid []byte) bool { return true }

func (v *ShortCircuitVerifier) Verify(adapter Adapter, toBeSigned []byte, sig []byte) error {
	hashAlg, ok := shortCircuitHash(v.Alg)
	if !ok {
		return newErr(KindUnsupportedSigningAlgorithm, "ShortCircuitVerifier.Verify", nil)
	}
	tbs, err := ComputeTBS(adapter, hashAlg, toBeSigned, false)
	if err != nil {
		return err
	}
	return adapter.Verify(v.Alg, nil, tbs, sig)
}

func shortCircuitHash(alg SigAlg) (HashAlg, bool) {
	switch alg {
	case AlgShortCircuit256:
		return HashSHA256, true
	case AlgShortCircuit384:
		return HashSHA384, true
	case AlgShortCircuit512:
		return HashSHA512, true
	default:
		return 0, false
	}
}

package cose

import "github.com/fxamacker/cbor/v2"

// COSE_Key map labels, RFC 9052 §7.1.
const (
	KeyLabelKty int64 = 1
	KeyLabelKid int64 = 2
	KeyLabelAlg int64 = 3
	KeyLabelCrv int64 = -1
	KeyLabelX   int64 = -2
	KeyLabelY   int64 = -3
	KeyLabelD   int64 = -4
	KeyLabelK   int64 = -1 // symmetric: same label as crv, different key type
)

// COSE_Key key types (kty), RFC 9052 §7.1 / IANA COSE Key Types.
const (
	KtyOKP       int64 = 1
	KtyEC2       int64 = 2
	KtySymmetric int64 = 4
)

// CoseKey is the decoded form of a COSE_Key map (RFC 9052 §7). Only
// EC2/OKP/Symmetric are modeled, matching this library's supported
// algorithm table; no key store or policy layer is implied.
type CoseKey struct {
	Kty    int64
	Kid    []byte
	Alg    int64
	Crv    int64
	X      []byte
	Y      []byte
	D      []byte // private scalar (EC2/OKP) or symmetric key bytes, depending on Kty
	HasY   bool
	HasD   bool
	HasAlg bool
}

// EncodeEC2PublicKey builds a COSE_Key map for an EC2 public key.
func EncodeEC2PublicKey(crv Curve, x, y []byte, kid []byte) ([]byte, error) {
	m := map[int64]interface{}{
		KeyLabelKty: KtyEC2,
		KeyLabelCrv: int64(crv),
		KeyLabelX:   x,
		KeyLabelY:   y,
	}
	if len(kid) > 0 {
		m[KeyLabelKid] = kid
	}
	return canonMarshal(m)
}

// EncodeEC2PrivateKey builds a COSE_Key map for an EC2 private key.
func EncodeEC2PrivateKey(crv Curve, x, y, d []byte, kid []byte) ([]byte, error) {
	m := map[int64]interface{}{
		KeyLabelKty: KtyEC2,
		KeyLabelCrv: int64(crv),
		KeyLabelX:   x,
		KeyLabelY:   y,
		KeyLabelD:   d,
	}
	if len(kid) > 0 {
		m[KeyLabelKid] = kid
	}
	return canonMarshal(m)
}

// EncodeOKPPublicKey builds a COSE_Key map for an OKP (Ed25519/X25519) public key.
func EncodeOKPPublicKey(crv Curve, x []byte, kid []byte) ([]byte, error) {
	m := map[int64]interface{}{
		KeyLabelKty: KtyOKP,
		KeyLabelCrv: int64(crv),
		KeyLabelX:   x,
	}
	if len(kid) > 0 {
		m[KeyLabelKid] = kid
	}
	return canonMarshal(m)
}

// EncodeSymmetricKey builds a COSE_Key map for a symmetric key.
func EncodeSymmetricKey(k []byte, kid []byte) ([]byte, error) {
	m := map[int64]interface{}{
		KeyLabelKty: KtySymmetric,
		KeyLabelK:   k,
	}
	if len(kid) > 0 {
		m[KeyLabelKid] = kid
	}
	return canonMarshal(m)
}

// DecodeCoseKey parses a COSE_Key CBOR map.
func DecodeCoseKey(data []byte) (*CoseKey, error) {
	var m map[int64]interface{}
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, newErr(KindFormat, "DecodeCoseKey", err)
	}
	k := &CoseKey{}
	kty, ok := toInt64(m[KeyLabelKty])
	if !ok {
		return nil, newErr(KindWrongElementType, "DecodeCoseKey", nil)
	}
	k.Kty = kty
	if kid, ok := m[KeyLabelKid].([]byte); ok {
		k.Kid = kid
	}
	if alg, ok := toInt64(m[KeyLabelAlg]); ok {
		k.Alg = alg
		k.HasAlg = true
	}
	switch kty {
	case KtyEC2:
		crv, ok := toInt64(m[KeyLabelCrv])
		if !ok {
			return nil, newErr(KindWrongCurve, "DecodeCoseKey", nil)
		}
		k.Crv = crv
		if x, ok := m[KeyLabelX].([]byte); ok {
			k.X = x
		}
		if y, ok := m[KeyLabelY].([]byte); ok {
			k.Y = y
			k.HasY = true
		}
		if d, ok := m[KeyLabelD].([]byte); ok {
			k.D = d
			k.HasD = true
		}
	case KtyOKP:
		crv, ok := toInt64(m[KeyLabelCrv])
		if !ok {
			return nil, newErr(KindWrongCurve, "DecodeCoseKey", nil)
		}
		k.Crv = crv
		if x, ok := m[KeyLabelX].([]byte); ok {
			k.X = x
		}
		if d, ok := m[KeyLabelD].([]byte); ok {
			k.D = d
			k.HasD = true
		}
	case KtySymmetric:
		if v, ok := m[KeyLabelK].([]byte); ok {
			k.D = v
			k.HasD = true
		}
	default:
		return nil, newErr(KindWrongKeyType, "DecodeCoseKey", nil)
	}
	return k, nil
}

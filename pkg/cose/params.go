package cose

import (
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Well-known header parameter labels, RFC 9052 §3.1.
const (
	LabelAlg         int64 = 1
	LabelCrit        int64 = 2
	LabelContentType int64 = 3
	LabelKid         int64 = 4
	LabelIV          int64 = 5
	LabelPartialIV   int64 = 6
	LabelCounterSig  int64 = 7
	LabelX5Chain     int64 = 33
)

// Label identifies a header parameter. COSE registers labels as either
// integers or text strings (RFC 9052 §3.1); Param carries whichever form
// the producer used.
type Label struct {
	Int    int64
	Text   string
	IsText bool
}

// IntLabel builds an integer-valued Label.
func IntLabel(i int64) Label { return Label{Int: i} }

// TextLabel builds a text-valued Label.
func TextLabel(s string) Label { return Label{Text: s, IsText: true} }

// Equal reports whether two labels denote the same parameter.
func (l Label) Equal(o Label) bool {
	if l.IsText != o.IsText {
		return false
	}
	if l.IsText {
		return l.Text == o.Text
	}
	return l.Int == o.Int
}

func (l Label) key() interface{} {
	if l.IsText {
		return "t:" + l.Text
	}
	return l.Int
}

func (l Label) cborValue() interface{} {
	if l.IsText {
		return l.Text
	}
	return l.Int
}

// ValueKind discriminates the native Go type a Param's Value holds.
type ValueKind int

const (
	ValueInt64 ValueKind = iota
	ValueText
	ValueBytes
	ValueBool
	ValueRaw // pre-encoded CBOR, used for unknown labels and custom encoders
)

// Param is one header-parameter node (the data model's "P"). Params form a
// singly-linked list via Next so that an engine can walk a caller-built
// parameter set without requiring a slice allocation, and so that decode
// can hand back pool-allocated nodes without copying.
type Param struct {
	Label       Label
	InProtected bool
	Critical    bool
	Unknown     bool // decode only: no special decoder claimed this label
	Kind        ValueKind
	Int64       int64
	Text        string
	Bytes       []byte
	Bool        bool
	Next        *Param
}

// NewIntParam builds a protected-or-unprotected integer-valued Param node.
func NewIntParam(label Label, v int64, protected bool) *Param {
	return &Param{Label: label, InProtected: protected, Kind: ValueInt64, Int64: v}
}

// NewBytesParam builds a byte-string-valued Param node.
func NewBytesParam(label Label, v []byte, protected bool) *Param {
	return &Param{Label: label, InProtected: protected, Kind: ValueBytes, Bytes: v}
}

// NewTextParam builds a text-string-valued Param node.
func NewTextParam(label Label, v string, protected bool) *Param {
	return &Param{Label: label, InProtected: protected, Kind: ValueText, Text: v}
}

// NewRawParam builds a Param whose value is already-encoded CBOR, for
// parameters such as x5chain (RFC 9360 §2) whose wire shape (a single byte
// string or an array of byte strings) this package transports but does not
// interpret.
func NewRawParam(label Label, rawCBOR []byte, protected bool) *Param {
	return &Param{Label: label, InProtected: protected, Kind: ValueRaw, Bytes: rawCBOR}
}

// Append links tail onto the end of the list starting at head and returns
// the (possibly new) head.
func Append(head, tail *Param) *Param {
	if head == nil {
		return tail
	}
	n := head
	for n.Next != nil {
		n = n.Next
	}
	n.Next = tail
	return head
}

// Find returns the first node in the list with the given label, or nil.
func Find(head *Param, label Label) *Param {
	for n := head; n != nil; n = n.Next {
		if n.Label.Equal(label) {
			return n
		}
	}
	return nil
}

// SpecialDecoder is given first chance to claim a header label during
// decode, before the generic well-known/unknown handling runs. It returns
// claimed=false to defer to the generic path.
type SpecialDecoder func(label Label, inProtected bool, raw cbor.RawMessage) (p *Param, claimed bool, err error)

func canonMarshal(v interface{}) ([]byte, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return enc.Marshal(v)
}

// EncodeHeaders walks the parameter list starting at head and produces the
// protected-bucket bstr and the unprotected-bucket map for a COSE message
// element. It rejects a duplicate (label, bucket) pair, enforces alg/iv/
// partial-iv bucket placement, and synthesizes crit from Critical-flagged
// protected nodes. A label present in both buckets at once is not rejected
// here; each bucket's label set is checked independently.
func EncodeHeaders(head *Param) (protected []byte, unprotected map[interface{}]interface{}, err error) {
	protectedMap := map[interface{}]interface{}{}
	unprotectedMap := map[interface{}]interface{}{}
	seenProtected := map[interface{}]bool{}
	seenUnprotected := map[interface{}]bool{}
	var critLabels []interface{}

	for n := head; n != nil; n = n.Next {
		k := n.Label.key()
		seen := seenUnprotected
		bucket := unprotectedMap
		if n.InProtected {
			seen = seenProtected
			bucket = protectedMap
		}
		if seen[k] {
			return nil, nil, newErr(KindDuplicateParameter, "EncodeHeaders", nil)
		}
		seen[k] = true

		if !n.Label.IsText {
			switch n.Label.Int {
			case LabelIV, LabelPartialIV:
				if n.InProtected {
					return nil, nil, newErr(KindParamWrongBucket, "EncodeHeaders", nil)
				}
			case LabelAlg:
				if !n.InProtected {
					return nil, nil, newErr(KindParamWrongBucket, "EncodeHeaders", nil)
				}
			case LabelContentType:
				if n.Kind == ValueBytes {
					return nil, nil, newErr(KindParamTypeMismatch, "EncodeHeaders", nil)
				}
			}
		}

		val, verr := paramCBORValue(n)
		if verr != nil {
			return nil, nil, verr
		}
		bucket[n.Label.cborValue()] = val

		if n.Critical {
			if !n.InProtected {
				return nil, nil, newErr(KindParamWrongBucket, "EncodeHeaders", nil)
			}
			critLabels = append(critLabels, n.Label.cborValue())
		}
	}

	if len(critLabels) > 0 {
		protectedMap[LabelCrit] = critLabels
	}

	if len(protectedMap) == 0 {
		protected = []byte{}
	} else {
		protected, err = canonMarshal(protectedMap)
		if err != nil {
			return nil, nil, newErr(KindFormat, "EncodeHeaders", err)
		}
	}
	return protected, unprotectedMap, nil
}

func paramCBORValue(n *Param) (interface{}, error) {
	switch n.Kind {
	case ValueInt64:
		return n.Int64, nil
	case ValueText:
		return n.Text, nil
	case ValueBytes:
		return n.Bytes, nil
	case ValueBool:
		return n.Bool, nil
	case ValueRaw:
		var v interface{}
		if err := cbor.Unmarshal(n.Bytes, &v); err != nil {
			return nil, newErr(KindFormat, "EncodeHeaders", err)
		}
		return v, nil
	default:
		return nil, nil
	}
}

// DecodeHeaders parses a protected bstr and an unprotected map into a Param
// list allocated from pool. special, if non-nil, is tried for every label
// other than crit (which is always handled first) before the generic
// well-known/unknown handling. When enforceCrit is
// false, crit-array validation (I5) is skipped entirely.
func DecodeHeaders(protected []byte, unprotected map[interface{}]interface{}, pool *Pool, special []SpecialDecoder, enforceCrit bool) (head *Param, err error) {
	protectedMap := map[interface{}]interface{}{}
	if len(protected) > 0 {
		if err := cbor.Unmarshal(protected, &protectedMap); err != nil {
			return nil, newErr(KindFormat, "DecodeHeaders", err)
		}
	}
	if unprotected == nil {
		unprotected = map[interface{}]interface{}{}
	}

	var tail *Param
	link := func(p *Param) {
		if head == nil {
			head = p
		} else {
			tail.Next = p
		}
		tail = p
	}

	protectedLabels := map[interface{}]bool{}
	unknownLabels := map[interface{}]bool{}
	var critEntries []interface{}
	haveCrit := false

	decodeEntry := func(k interface{}, v interface{}, inProtected bool) error {
		label := labelFromCBORKey(k)
		if inProtected {
			protectedLabels[k] = true
		}

		if !label.IsText && label.Int == LabelCrit {
			if !inProtected {
				return newErr(KindParamWrongBucket, "DecodeHeaders", nil)
			}
			arr, ok := v.([]interface{})
			if !ok {
				return newErr(KindWrongElementType, "DecodeHeaders", nil)
			}
			if len(arr) == 0 {
				return newErr(KindEmptyCrit, "DecodeHeaders", nil)
			}
			haveCrit = true
			critEntries = arr
			p, perr := pool.alloc()
			if perr != nil {
				return perr
			}
			*p = Param{Label: label, InProtected: true, Kind: ValueRaw}
			link(p)
			return nil
		}

		raw, rerr := cbor.Marshal(v)
		if rerr != nil {
			return newErr(KindFormat, "DecodeHeaders", rerr)
		}

		for _, sd := range special {
			p, claimed, serr := sd(label, inProtected, raw)
			if serr != nil {
				return serr
			}
			if claimed {
				p.Label = label
				p.InProtected = inProtected
				link(p)
				return nil
			}
		}

		wk, werr := decodeWellKnown(label, v, inProtected)
		if werr != nil {
			return werr
		}
		if wk != nil {
			pp, perr := pool.alloc()
			if perr != nil {
				return perr
			}
			*pp = *wk
			pp.Label = label
			pp.InProtected = inProtected
			link(pp)
			return nil
		}

		p, perr := pool.alloc()
		if perr != nil {
			return perr
		}
		*p = Param{Label: label, InProtected: inProtected, Unknown: true, Kind: ValueRaw, Bytes: raw}
		link(p)
		unknownLabels[k] = true
		return nil
	}

	decodeBucket := func(bucket map[interface{}]interface{}, inProtected bool) error {
		keys := make([]interface{}, 0, len(bucket))
		for k := range bucket {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return cborKeyLess(keys[i], keys[j]) })

		for _, k := range keys {
			if err := decodeEntry(k, bucket[k], inProtected); err != nil {
				return err
			}
		}
		return nil
	}

	if err := decodeBucket(protectedMap, true); err != nil {
		return nil, err
	}
	if err := decodeBucket(unprotected, false); err != nil {
		return nil, err
	}

	if enforceCrit && haveCrit {
		for _, ce := range critEntries {
			label := labelFromCBORKey(ce)
			if !protectedLabels[label.key()] {
				return nil, newErr(KindCriticalLabelNotProtected, "DecodeHeaders", nil)
			}
			if unknownLabels[label.key()] {
				return nil, newErr(KindUnknownCriticalParameter, "DecodeHeaders", nil)
			}
		}
	}

	return head, nil
}

func decodeWellKnown(label Label, v interface{}, inProtected bool) (*Param, error) {
	if label.IsText {
		return nil, nil
	}
	switch label.Int {
	case LabelAlg:
		i, ok := toInt64(v)
		if !ok {
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
		if !inProtected {
			return nil, newErr(KindParamWrongBucket, "DecodeHeaders", nil)
		}
		return &Param{Kind: ValueInt64, Int64: i}, nil
	case LabelKid:
		b, ok := v.([]byte)
		if !ok {
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
		return &Param{Kind: ValueBytes, Bytes: b}, nil
	case LabelIV, LabelPartialIV:
		if inProtected {
			return nil, newErr(KindParamWrongBucket, "DecodeHeaders", nil)
		}
		b, ok := v.([]byte)
		if !ok {
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
		return &Param{Kind: ValueBytes, Bytes: b}, nil
	case LabelContentType:
		switch t := v.(type) {
		case int64:
			return &Param{Kind: ValueInt64, Int64: t}, nil
		case uint64:
			return &Param{Kind: ValueInt64, Int64: int64(t)}, nil
		case string:
			return &Param{Kind: ValueText, Text: t}, nil
		default:
			return nil, newErr(KindParamTypeMismatch, "DecodeHeaders", nil)
		}
	case LabelEphemeralKey:
		switch t := v.(type) {
		case []byte:
			return &Param{Kind: ValueBytes, Bytes: t}, nil
		case map[interface{}]interface{}:
			raw, rerr := cbor.Marshal(t)
			if rerr != nil {
				return nil, newErr(KindFormat, "DecodeHeaders", rerr)
			}
			return &Param{Kind: ValueRaw, Bytes: raw}, nil
		default:
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
	case LabelX5Chain:
		switch v.(type) {
		case []byte, []interface{}:
		default:
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
		raw, rerr := cbor.Marshal(v)
		if rerr != nil {
			return nil, newErr(KindFormat, "DecodeHeaders", rerr)
		}
		return &Param{Kind: ValueRaw, Bytes: raw}, nil
	case LabelHPKESenderInfo:
		if _, ok := v.([]interface{}); !ok {
			return nil, newErr(KindWrongElementType, "DecodeHeaders", nil)
		}
		raw, rerr := cbor.Marshal(v)
		if rerr != nil {
			return nil, newErr(KindFormat, "DecodeHeaders", rerr)
		}
		return &Param{Kind: ValueRaw, Bytes: raw}, nil
	default:
		return nil, nil
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

func labelFromCBORKey(k interface{}) Label {
	switch t := k.(type) {
	case string:
		return TextLabel(t)
	case int64:
		return IntLabel(t)
	case uint64:
		return IntLabel(int64(t))
	case int:
		return IntLabel(int64(t))
	default:
		return Label{}
	}
}

func cborKeyLess(a, b interface{}) bool {
	ai, aok := toInt64(a)
	bi, bok := toInt64(b)
	if aok && bok {
		return ai < bi
	}
	as, asok := a.(string)
	bs, bsok := b.(string)
	if asok && bsok {
		return as < bs
	}
	return aok && !bok
}

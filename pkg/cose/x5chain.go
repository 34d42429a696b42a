package cose

import "github.com/fxamacker/cbor/v2"

// EncodeX5Chain builds the CBOR encoding of an x5chain header value (RFC
// 9360 §2): a lone DER certificate is carried as a single byte string, two
// or more as an array of byte strings. certsDER must be ordered leaf-first.
// This package treats the certificates as opaque bytes; it never parses or
// validates them.
func EncodeX5Chain(certsDER [][]byte) ([]byte, error) {
	if len(certsDER) == 0 {
		return nil, newErr(KindWrongArity, "EncodeX5Chain", nil)
	}
	var v interface{}
	if len(certsDER) == 1 {
		v = certsDER[0]
	} else {
		arr := make([]interface{}, len(certsDER))
		for i, c := range certsDER {
			arr[i] = c
		}
		v = arr
	}
	raw, err := canonMarshal(v)
	if err != nil {
		return nil, newErr(KindFormat, "EncodeX5Chain", err)
	}
	return raw, nil
}

// X5ChainParam wraps the CBOR bytes from EncodeX5Chain into a header Param,
// ready to Append onto a message's extra parameter list.
func X5ChainParam(rawCBOR []byte, protected bool) *Param {
	return NewRawParam(IntLabel(LabelX5Chain), rawCBOR, protected)
}

// DecodeX5Chain reads the x5chain node from a decoded header list, if
// present, and returns the certificate chain as raw DER blobs, leaf-first.
// It returns ok=false when the message carries no x5chain parameter.
func DecodeX5Chain(head *Param) (certsDER [][]byte, ok bool, err error) {
	n := Find(head, IntLabel(LabelX5Chain))
	if n == nil {
		return nil, false, nil
	}
	var v interface{}
	if err := cbor.Unmarshal(n.Bytes, &v); err != nil {
		return nil, false, newErr(KindFormat, "DecodeX5Chain", err)
	}
	switch t := v.(type) {
	case []byte:
		return [][]byte{t}, true, nil
	case []interface{}:
		out := make([][]byte, len(t))
		for i, e := range t {
			b, ok := e.([]byte)
			if !ok {
				return nil, false, newErr(KindWrongElementType, "DecodeX5Chain", nil)
			}
			out[i] = b
		}
		return out, true, nil
	default:
		return nil, false, newErr(KindWrongElementType, "DecodeX5Chain", nil)
	}
}

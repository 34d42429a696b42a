package cose

import "github.com/fxamacker/cbor/v2"

// CBOR tag numbers for the six COSE message types, RFC 9052 §2 table 7.
const (
	TagSign1    uint64 = 18
	TagSign     uint64 = 98
	TagEncrypt0 uint64 = 16
	TagEncrypt  uint64 = 96
	TagMAC0     uint64 = 17
	TagMAC      uint64 = 97
)

// wrapTag prefixes body with CBOR tag tagNum, honoring the tag discipline
// in opts: emitted by default, suppressed by TagForbidden or OmitTag.
func wrapTag(tagNum uint64, body []byte, opts Options) ([]byte, error) {
	if opts.TagForbidden || opts.OmitTag {
		return body, nil
	}
	tagged := cbor.Tag{Number: tagNum, Content: cbor.RawMessage(body)}
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, newErr(KindFormat, "wrapTag", err)
	}
	out, err := enc.Marshal(tagged)
	if err != nil {
		return nil, newErr(KindFormat, "wrapTag", err)
	}
	return out, nil
}

// unwrapTag strips an expected CBOR tag from data, honoring tag discipline:
// TagRequired rejects untagged input, TagForbidden rejects tagged input,
// and the default accepts either form.
func unwrapTag(expectedTag uint64, data []byte, opts Options) ([]byte, error) {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err == nil {
		if opts.TagForbidden {
			return nil, newErr(KindTagMismatch, "unwrapTag", nil)
		}
		if raw.Number != expectedTag {
			return nil, newErr(KindTagMismatch, "unwrapTag", nil)
		}
		return []byte(raw.Content), nil
	}
	if opts.TagRequired {
		return nil, newErr(KindTagMismatch, "unwrapTag", nil)
	}
	return data, nil
}

package cose

// Options is the option-flag surface accepted by
// every engine entry point. The zero value is the strict default: full
// crit enforcement, the CBOR tag emitted on encode and accepted either
// way on decode, and a decoded message fully verified rather than just
// parsed.
type Options struct {
	// DecodeOnly parses the message structure and header parameters without
	// attempting any signature/MAC verification or decryption. Used by
	// inspection tooling and by callers who verify out of band.
	DecodeOnly bool

	// NoCritCheck disables crit-array enforcement entirely (I5). Intended
	// only for interop testing against producers known to misuse crit.
	NoCritCheck bool

	// TagForbidden rejects input wrapped in the type's CBOR tag instead of
	// requiring or tolerating it, and causes encode to omit the tag.
	// Mutually exclusive with TagRequired; if neither is set the tag is
	// optional on decode (accepted either way) and present on encode.
	TagForbidden bool

	// TagRequired requires the type's CBOR tag to be present on decode.
	// Encode already emits the tag by default, so this flag only changes
	// decode behavior.
	TagRequired bool

	// OmitTag suppresses the CBOR tag on encode while leaving decode
	// discipline untouched (TagRequired/TagForbidden still govern what
	// decode accepts). Encoders emit the tag by default; set this when a
	// caller wants an untagged message without also relaxing decode.
	OmitTag bool

	// ExternalAAD is additional authenticated data folded into the
	// Sig_structure/Enc_structure/MAC_structure external_aad field. Nil
	// means "no external AAD" and is encoded as an empty byte string.
	ExternalAAD []byte

	// Pool, when non-nil, is used for all Param allocations made while
	// processing this call. When nil, engines allocate a private pool sized
	// defaultPoolCapacity.
	Pool *Pool
}

func (o Options) pool() *Pool {
	if o.Pool != nil {
		return o.Pool
	}
	return NewPool(defaultPoolCapacity)
}

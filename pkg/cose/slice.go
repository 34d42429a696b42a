package cose

// Slice is the library's byte view: a borrowed, read-only window into
// caller-owned memory. A nil Slice is the distinguished "absent" value
// (e.g. a detached payload), distinct from a non-nil zero-length Slice
// (e.g. an explicit empty external_aad).
type Slice = []byte

// IsNilSlice reports whether s is the absent value.
func IsNilSlice(s Slice) bool { return s == nil }

// IsEmptySlice reports whether s is present but has zero length.
func IsEmptySlice(s Slice) bool { return s != nil && len(s) == 0 }

// orEmpty normalizes a nil Slice to a present, zero-length one. Several
// Sig_structure/Enc_structure/MAC_structure fields (external_aad in
// particular) are defined by RFC 9052 as always-present byte strings; a
// caller passing nil means "no AAD", which this library encodes the same
// way as an explicit empty slice.
func orEmpty(s Slice) Slice {
	if s == nil {
		return []byte{}
	}
	return s
}

// Buffer is a caller-owned output accumulator. In Probe mode it records
// only the number of bytes that would have been written, never retaining
// them, for the two-pass "measure, then fill" idiom when a caller wants
// the final encoded length before committing a destination buffer. The
// wire-format encoders in this package do not write through a Buffer;
// they return freshly marshaled byte slices.
type Buffer struct {
	Probe bool

	buf []byte
	n   int
}

// NewBuffer returns a Buffer that retains written bytes, with capacityHint
// as a starting allocation size.
func NewBuffer(capacityHint int) *Buffer {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Buffer{buf: make([]byte, 0, capacityHint)}
}

// NewProbeBuffer returns a Buffer that only counts bytes written to it.
func NewProbeBuffer() *Buffer {
	return &Buffer{Probe: true}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.n += len(p)
	if !b.Probe {
		b.buf = append(b.buf, p...)
	}
	return len(p), nil
}

// Len reports the total number of bytes written so far, including in Probe mode.
func (b *Buffer) Len() int { return b.n }

// Bytes returns the accumulated bytes, or nil if this is a Probe buffer.
func (b *Buffer) Bytes() []byte {
	if b.Probe {
		return nil
	}
	return b.buf
}

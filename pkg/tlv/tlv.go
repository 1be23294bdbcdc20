// Package tlv implements the binary type-length-value codec used by the
// DNCP wire format: a 16-bit type, a 16-bit length (payload bytes, header
// and padding excluded), and a payload padded to a 4-byte boundary.
package tlv

import (
	"encoding/binary"
	"errors"
)

// headerLen is the size in bytes of a TLV header (type + length).
const headerLen = 4

// align is the byte boundary every TLV (header + payload) is padded to.
const align = 4

var (
	// ErrTruncated is returned when a declared length would read past
	// the end of the buffer.
	ErrTruncated = errors.New("tlv: truncated")

	// ErrBadPad is returned when the padding bytes following a payload
	// are non-zero.
	ErrBadPad = errors.New("tlv: non-zero pad byte")
)

// Attr is one decoded (type, payload) pair. Payload aliases the input
// buffer (an empty payload decodes as nil); callers that retain an Attr
// past the lifetime of the decoded buffer must copy Payload themselves.
type Attr struct {
	Type    uint16
	Payload []byte
}

// padded rounds n up to the next multiple of align.
func padded(n int) int {
	return (n + align - 1) &^ (align - 1)
}

// Encode appends one TLV (header, payload, zero pad) for (typ, payload)
// to dst and returns the extended slice.
func Encode(dst []byte, typ uint16, payload []byte) []byte {
	var hdr [headerLen]byte
	binary.BigEndian.PutUint16(hdr[0:2], typ)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(payload)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, payload...)
	if pad := padded(len(payload)) - len(payload); pad > 0 {
		var zeros [align]byte
		dst = append(dst, zeros[:pad]...)
	}
	return dst
}

// EncodeAll concatenates Encode for every attr in order, as the Node Store
// does when emitting a node's canonical TLV list.
func EncodeAll(attrs []Attr) []byte {
	var buf []byte
	for _, a := range attrs {
		buf = Encode(buf, a.Type, a.Payload)
	}
	return buf
}

// Decode parses buf into a sequence of top-level Attrs, preserving order.
// It fails with ErrTruncated if a declared length overruns the buffer, or
// ErrBadPad if pad bytes are non-zero.
func Decode(buf []byte) ([]Attr, error) {
	var out []Attr
	for len(buf) > 0 {
		a, rest, err := decodeOne(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		buf = rest
	}
	return out, nil
}

// IterateNested decodes the payload of a container TLV the same way
// Decode does for a top-level message; the codec does not distinguish
// container types from opaque ones, it is the caller who knows which
// TLV types nest further TLVs (§9 "container TLVs").
func IterateNested(payload []byte) ([]Attr, error) {
	return Decode(payload)
}

func decodeOne(buf []byte) (Attr, []byte, error) {
	if len(buf) < headerLen {
		return Attr{}, nil, ErrTruncated
	}
	typ := binary.BigEndian.Uint16(buf[0:2])
	length := int(binary.BigEndian.Uint16(buf[2:4]))

	total := headerLen + padded(length)
	if len(buf) < total {
		// The unpadded payload might still fit even if the pad doesn't;
		// that is still truncation, since pad bytes are structurally
		// required.
		if len(buf) < headerLen+length {
			return Attr{}, nil, ErrTruncated
		}
		return Attr{}, nil, ErrTruncated
	}

	var payload []byte
	if length > 0 {
		payload = buf[headerLen : headerLen+length]
	}
	padStart := headerLen + length
	for _, b := range buf[padStart:total] {
		if b != 0 {
			return Attr{}, nil, ErrBadPad
		}
	}

	return Attr{Type: typ, Payload: payload}, buf[total:], nil
}

package flv

import (
	"bytes"
	"io"
)

const (
	HeaderLength    = 9
	TagHeaderLength = 11
	PrevTagSizeLen  = 4

	// MaxHeaderSize bounds the padding read from untrusted input.
	MaxHeaderSize = 4096
)

// TypeFlags bits as written by Adobe-conformant muxers: bit 2 audio, bit 0 video.
const (
	FlagAudio uint8 = 0x04
	FlagVideo uint8 = 0x01
)

var signature = [3]byte{'F', 'L', 'V'}

// Header is the FLV file header.
//
//	Signature   UI8[3]  'F' 'L' 'V'
//	Version     UI8
//	Flags       UB[5] reserved, UB[1] audio, UB[1] reserved, UB[1] video
//	DataOffset  UI32    length of this header in bytes
//
// Some encoders pad the header, so tags start at HeaderSize, not at 9.
type Header struct {
	Signature  [3]byte
	Version    uint8
	Flags      uint8
	HeaderSize uint32

	// bytes between offset 9 and HeaderSize
	Padding []byte
}

// NewHeader returns a version 1 header without padding.
func NewHeader(flags uint8) *Header {
	return &Header{
		Signature:  signature,
		Version:    1,
		Flags:      flags,
		HeaderSize: HeaderLength,
	}
}

// ReadHeader consumes the file header, padding included.
func ReadHeader(r io.Reader) (*Header, error) {
	b := make([]byte, HeaderLength)
	if n, err := io.ReadFull(r, b); err != nil {
		return nil, newParseError(int64(n), ErrMalformedHeader, "need %d bytes, got %d", HeaderLength, n)
	}

	h := &Header{
		Version:    b[3],
		Flags:      b[4],
		HeaderSize: u32BE(b[5:9]),
	}
	copy(h.Signature[:], b[:3])

	if h.Signature != signature {
		return nil, newParseError(0, ErrMalformedHeader, "bad signature %q", h.Signature[:])
	}

	if h.HeaderSize < HeaderLength {
		return nil, newParseError(5, ErrMalformedHeader, "header size %d < %d", h.HeaderSize, HeaderLength)
	}

	if h.HeaderSize > MaxHeaderSize {
		return nil, newParseError(5, ErrMalformedHeader, "header size %d > %d", h.HeaderSize, MaxHeaderSize)
	}

	if pad := int64(h.HeaderSize) - HeaderLength; pad > 0 {
		var buf bytes.Buffer
		n, err := io.CopyN(&buf, r, pad)
		if err != nil {
			return nil, newParseError(HeaderLength+n, ErrMalformedHeader, "header padding: need %d bytes, got %d", pad, n)
		}
		h.Padding = buf.Bytes()
	}

	return h, nil
}

func (h *Header) HasAudio() bool {
	return h.Flags&FlagAudio != 0
}

func (h *Header) HasVideo() bool {
	return h.Flags&FlagVideo != 0
}

// Bytes re-encodes the header exactly as it was read.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderLength, HeaderLength+len(h.Padding))
	copy(b, h.Signature[:])
	b[3] = h.Version
	b[4] = h.Flags
	PutU32BE(b[5:], h.HeaderSize)

	return append(b, h.Padding...)
}

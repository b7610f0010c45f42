package flv

import (
	"io"
	"strings"
)

type TagType uint8

const (
	TagTypeAudio  TagType = 8
	TagTypeVideo  TagType = 9
	TagTypeScript TagType = 18
)

func (t TagType) String() string {
	switch t {
	case TagTypeAudio:
		return "AUDIO"
	case TagTypeVideo:
		return "VIDEO"
	case TagTypeScript:
		return "SCRIPT"
	default:
		return "UNKNOWN"
	}
}

func (t TagType) Known() bool {
	return t == TagTypeAudio || t == TagTypeVideo || t == TagTypeScript
}

// ParseTagType accepts "audio", "video" and "script" ("data") in any case.
func ParseTagType(s string) (TagType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return TagTypeAudio, true
	case "video":
		return TagTypeVideo, true
	case "script", "data":
		return TagTypeScript, true
	}

	return 0, false
}

// TagHeader is the 11 byte header in front of every tag payload.
type TagHeader struct {
	Type      TagType // 1byte
	DataSize  uint32  // 3bytes, payload only
	Timestamp uint32  // 3bytes, ms

	// 4bytes: TimestampExtended(1byte) + StreamID(3bytes, always 0).
	// Kept verbatim and never folded into Timestamp.
	StreamID uint32
}

// ReadTagHeader consumes 11 bytes. A short read returns ErrTruncatedTag.
func ReadTagHeader(r io.Reader) (TagHeader, error) {
	var b [TagHeaderLength]byte
	if n, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return TagHeader{}, newParseError(int64(n), ErrTruncatedTag, "need %d bytes, got %d", TagHeaderLength, n)
		}
		return TagHeader{}, err
	}

	return decodeTagHeader(b[:]), nil
}

func decodeTagHeader(b []byte) TagHeader {
	return TagHeader{
		Type:      TagType(b[0]),
		DataSize:  DecodeBE(b[1:4]),
		Timestamp: DecodeBE(b[4:7]),
		StreamID:  DecodeBE(b[7:11]),
	}
}

// Encode writes the header into b, which must hold 11 bytes.
func (th *TagHeader) Encode(b []byte) {
	b[0] = byte(th.Type)
	PutU24BE(b[1:4], th.DataSize)
	PutU24BE(b[4:7], th.Timestamp)
	PutU32BE(b[7:11], th.StreamID)
}

func (th *TagHeader) Bytes() []byte {
	b := make([]byte, TagHeaderLength)
	th.Encode(b)
	return b
}

// Size is the tag length counted by the next PreviousTagSize.
func (th *TagHeader) Size() uint32 {
	return TagHeaderLength + th.DataSize
}

// Tag is one tag as handed out by Reader.
type Tag struct {
	PrevTagSize uint32
	Header      TagHeader
	Offset      int64 // offset of the tag header in the input

	// Payload of the types passed to Reader.KeepPayload, nil for the
	// others. Only valid until the next Reader.ReadTag.
	Data []byte

	Audio *AudioTagInfo
	Video *VideoTagInfo
}

func (t *Tag) Type() TagType {
	return t.Header.Type
}

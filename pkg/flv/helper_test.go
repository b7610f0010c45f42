package flv

import (
	"bytes"
)

// In-package tests cannot import internal/flvtest (it imports flv), hence
// this local copy of its builders.

type testTag struct {
	typ  TagType
	ts   uint32
	data []byte
}

// buildFLV lays out h followed by tags with correct PreviousTagSize fields.
func buildFLV(h *Header, trailer bool, tags ...testTag) []byte {
	var buf bytes.Buffer
	buf.Write(h.Bytes())

	prev := uint32(0)
	for _, tt := range tags {
		buf.Write(EncodeBE(prev, 4))

		th := TagHeader{Type: tt.typ, DataSize: uint32(len(tt.data)), Timestamp: tt.ts}
		buf.Write(th.Bytes())
		buf.Write(tt.data)
		prev = th.Size()
	}

	if trailer {
		buf.Write(EncodeBE(prev, 4))
	}

	return buf.Bytes()
}

func payload(first byte, n int) []byte {
	b := make([]byte, n)
	if n > 0 {
		b[0] = first
	}
	for i := 1; i < n; i++ {
		b[i] = byte(i)
	}

	return b
}

func sampleTags() []testTag {
	return []testTag{
		{typ: TagTypeScript, ts: 0, data: payload(0x02, 30)},
		{typ: TagTypeVideo, ts: 0, data: payload(0x17, 40)},
		{typ: TagTypeAudio, ts: 0, data: payload(0xAF, 7)},
		{typ: TagTypeAudio, ts: 23, data: payload(0xAF, 12)},
		{typ: TagTypeVideo, ts: 40, data: payload(0x27, 25)},
		{typ: TagTypeAudio, ts: 46, data: payload(0x2F, 9)},
		{typ: TagTypeVideo, ts: 80, data: payload(0x27, 1)},
	}
}

// Package flvtest builds small FLV files in memory for tests.
package flvtest

import (
	"bytes"

	"flvkit/pkg/flv"
)

type Tag struct {
	Type      flv.TagType
	Timestamp uint32
	Data      []byte
}

// Build lays out h followed by tags with correct PreviousTagSize fields,
// plus the trailing one when trailer is set.
func Build(h *flv.Header, trailer bool, tags ...Tag) []byte {
	var buf bytes.Buffer
	buf.Write(h.Bytes())

	prev := uint32(0)
	for _, t := range tags {
		buf.Write(flv.EncodeBE(prev, flv.PrevTagSizeLen))

		th := flv.TagHeader{Type: t.Type, DataSize: uint32(len(t.Data)), Timestamp: t.Timestamp}
		buf.Write(th.Bytes())
		buf.Write(t.Data)
		prev = th.Size()
	}

	if trailer {
		buf.Write(flv.EncodeBE(prev, flv.PrevTagSizeLen))
	}

	return buf.Bytes()
}

// Payload is n bytes starting with first, then 1, 2, 3...
func Payload(first byte, n int) []byte {
	b := make([]byte, n)
	if n > 0 {
		b[0] = first
	}
	for i := 1; i < n; i++ {
		b[i] = byte(i)
	}

	return b
}

// Sample is a short audio and video stream headed by a script tag.
func Sample() []Tag {
	return []Tag{
		{Type: flv.TagTypeScript, Data: Payload(0x02, 30)},
		{Type: flv.TagTypeVideo, Data: Payload(0x17, 40)},
		{Type: flv.TagTypeAudio, Data: Payload(0xAF, 7)},
		{Type: flv.TagTypeVideo, Timestamp: 40, Data: Payload(0x27, 25)},
		{Type: flv.TagTypeAudio, Timestamp: 46, Data: Payload(0x2F, 9)},
	}
}

// Filter keeps the tags of the given types, in order.
func Filter(tags []Tag, types ...flv.TagType) []Tag {
	var out []Tag
	for _, t := range tags {
		for _, typ := range types {
			if t.Type == typ {
				out = append(out, t)
				break
			}
		}
	}

	return out
}

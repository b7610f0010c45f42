package flv

import (
	"io"

	"github.com/pkg/errors"
)

type flusher interface {
	Flush() error
}

// Remuxer writes a subset of a tag stream out as a new FLV file. Only tag
// types passed to NewRemuxer are retained (video when none are given).
//
// Output starts with the source header and a zero PreviousTagSize; every
// later PreviousTagSize is recomputed from the previously retained tag, so
// the result stays consistent even though it no longer matches the input.
type Remuxer struct {
	w      io.Writer
	header *Header
	retain map[TagType]bool

	count        uint64
	prevDataSize uint32
	written      int64
	closed       bool
}

func NewRemuxer(w io.Writer, types ...TagType) *Remuxer {
	if len(types) == 0 {
		types = []TagType{TagTypeVideo}
	}

	m := &Remuxer{
		w:      w,
		retain: make(map[TagType]bool, len(types)),
	}
	for _, t := range types {
		m.retain[t] = true
	}

	return m
}

// SetHeader sets the header to copy out. It must be called before the
// first retained tag.
func (m *Remuxer) SetHeader(h *Header) {
	m.header = h
}

func (m *Remuxer) Retains(t TagType) bool {
	return m.retain[t]
}

// Count is the number of tags written so far.
func (m *Remuxer) Count() uint64 {
	return m.count
}

// Written is the number of bytes written so far.
func (m *Remuxer) Written() int64 {
	return m.written
}

// WriteTag appends t when its type is retained. t.Data must hold the full
// payload.
func (m *Remuxer) WriteTag(t *Tag) error {
	if !m.retain[t.Header.Type] {
		return nil
	}
	if m.closed {
		return errors.New("flv: remuxer closed")
	}
	if uint32(len(t.Data)) != t.Header.DataSize {
		return errors.Errorf("flv: tag at offset %d has %d payload bytes, header says %d",
			t.Offset, len(t.Data), t.Header.DataSize)
	}

	var pts [PrevTagSizeLen]byte
	if m.count == 0 {
		if m.header == nil {
			return errors.New("flv: remuxer has no header")
		}
		if err := m.write(m.header.Bytes()); err != nil {
			return errors.Wrap(err, "write flv header")
		}
	} else {
		PutU32BE(pts[:], TagHeaderLength+m.prevDataSize)
	}

	var th [TagHeaderLength]byte
	t.Header.Encode(th[:])

	if err := m.write(pts[:]); err != nil {
		return errors.Wrapf(err, "write previous tag size of tag %d", m.count)
	}
	if err := m.write(th[:]); err != nil {
		return errors.Wrapf(err, "write tag header of tag %d", m.count)
	}
	if err := m.write(t.Data); err != nil {
		return errors.Wrapf(err, "write payload of tag %d", m.count)
	}
	if err := m.flush(); err != nil {
		return err
	}

	m.count++
	m.prevDataSize = t.Header.DataSize
	return nil
}

// Close writes the trailing PreviousTagSize of the last retained tag. The
// underlying writer is not closed.
func (m *Remuxer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	if m.count == 0 {
		return nil
	}

	var pts [PrevTagSizeLen]byte
	PutU32BE(pts[:], TagHeaderLength+m.prevDataSize)
	if err := m.write(pts[:]); err != nil {
		return errors.Wrap(err, "write trailing previous tag size")
	}

	return m.flush()
}

func (m *Remuxer) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	n, err := m.w.Write(b)
	m.written += int64(n)
	return err
}

func (m *Remuxer) flush() error {
	if f, ok := m.w.(flusher); ok {
		return errors.Wrap(f.Flush(), "flush remux output")
	}
	return nil
}

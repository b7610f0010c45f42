package flv

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	readBufSize = 64 * 1024

	// flags byte + AVC packet type + composition time
	mediaHeadLen = 5
)

// Reader reads the header and then the tags of an FLV input, one at a time.
// It owns the running offset and a payload buffer that is reused between tags.
type Reader struct {
	br  *bufio.Reader
	off int64

	header  *Header
	keep    map[TagType]bool
	buf     []byte
	head    [mediaHeadLen]byte
	readErr error // sticky, io.EOF once the input is done
}

func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, readBufSize)
	}

	return &Reader{
		br:   br,
		keep: make(map[TagType]bool),
	}
}

// KeepPayload makes ReadTag buffer the whole payload of the given tag types
// into Tag.Data. Payloads of other types are skipped; audio and video tags
// are still analyzed from their first bytes.
func (r *Reader) KeepPayload(types ...TagType) {
	for _, t := range types {
		r.keep[t] = true
	}
}

// Offset is the number of input bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

func (r *Reader) Header() *Header {
	return r.header
}

func (r *Reader) ReadHeader() (*Header, error) {
	if r.header != nil {
		return r.header, nil
	}
	if r.readErr != nil {
		return nil, r.readErr
	}

	h, err := ReadHeader(r.br)
	if err != nil {
		r.readErr = err
		return nil, err
	}

	r.header = h
	r.off = int64(h.HeaderSize)
	return h, nil
}

// ReadTag returns the next tag, io.EOF once input ends at a tag boundary, or
// a *ParseError wrapping ErrTruncatedPayload when input ends inside a payload.
func (r *Reader) ReadTag() (*Tag, error) {
	if r.header == nil {
		if _, err := r.ReadHeader(); err != nil {
			return nil, err
		}
	}
	if r.readErr != nil {
		return nil, r.readErr
	}

	var pts [PrevTagSizeLen]byte
	n, err := io.ReadFull(r.br, pts[:])
	r.off += int64(n)
	if err != nil {
		return nil, r.fail(err, "read previous tag size")
	}

	t := &Tag{
		PrevTagSize: u32BE(pts[:]),
		Offset:      r.off,
	}

	t.Header, err = ReadTagHeader(r.br)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			r.off += pe.Offset
			r.readErr = io.EOF
			return nil, io.EOF
		}
		return nil, r.fail(err, "read tag header")
	}
	r.off += TagHeaderLength

	isMedia := t.Header.Type == TagTypeAudio || t.Header.Type == TagTypeVideo
	switch {
	case r.keep[t.Header.Type]:
		if t.Data, err = r.readPayload(t); err != nil {
			return nil, err
		}
		if isMedia {
			analyze(t, t.Data)
		}
	case isMedia:
		head, err := r.readHead(t)
		if err != nil {
			return nil, err
		}
		analyze(t, head)
	default:
		if err = r.skipPayload(t, 0); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func analyze(t *Tag, b []byte) {
	if len(b) == 0 {
		return
	}

	if t.Header.Type == TagTypeAudio {
		info := AnalyzeAudioTag(b)
		t.Audio = &info
	} else {
		info := AnalyzeVideoTag(b)
		t.Video = &info
	}
}

// readHead reads the first bytes of a payload for analysis and skips the rest.
func (r *Reader) readHead(t *Tag) ([]byte, error) {
	size := mediaHeadLen
	if int(t.Header.DataSize) < size {
		size = int(t.Header.DataSize)
	}

	head := r.head[:size]
	n, err := io.ReadFull(r.br, head)
	r.off += int64(n)
	if err != nil {
		return nil, r.truncated(t, n, err)
	}

	if err := r.skipPayload(t, size); err != nil {
		return nil, err
	}

	return head, nil
}

func (r *Reader) readPayload(t *Tag) ([]byte, error) {
	size := int(t.Header.DataSize)
	if cap(r.buf) < size {
		r.buf = make([]byte, size)
	}

	data := r.buf[:size]
	n, err := io.ReadFull(r.br, data)
	r.off += int64(n)
	if err != nil {
		return nil, r.truncated(t, n, err)
	}

	return data, nil
}

// skipPayload discards the payload of t, done bytes of which were already read.
func (r *Reader) skipPayload(t *Tag, done int) error {
	n, err := r.br.Discard(int(t.Header.DataSize) - done)
	r.off += int64(n)
	if err != nil {
		return r.truncated(t, done+n, err)
	}

	return nil
}

func (r *Reader) truncated(t *Tag, got int, err error) error {
	if err != io.EOF && err != io.ErrUnexpectedEOF {
		return r.fail(err, "read payload")
	}

	r.readErr = newParseError(r.off, ErrTruncatedPayload, "%s tag at offset %d declares %d bytes, got %d",
		t.Header.Type, t.Offset, t.Header.DataSize, got)
	return r.readErr
}

// fail turns a clean end of input into io.EOF and anything else into a sticky
// wrapped error.
func (r *Reader) fail(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.readErr = io.EOF
		return io.EOF
	}

	r.readErr = errors.Wrapf(err, "%s at offset %d", what, r.off)
	return r.readErr
}

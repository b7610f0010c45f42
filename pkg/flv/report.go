package flv

import (
	"fmt"
	"io"
)

// Reporter writes a human readable line per tag. The layout is for people,
// not for parsers.
type Reporter struct {
	w   io.Writer
	err error
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (rp *Reporter) Header(h *Header) {
	rp.printf("============== FLV Header ==============\n")
	rp.printf("Signature:  0x %c %c %c\n", h.Signature[0], h.Signature[1], h.Signature[2])
	rp.printf("Version:    0x %X\n", h.Version)
	rp.printf("Flags  :    0x %X\n", h.Flags)
	rp.printf("HeaderSize: 0x %X\n", h.HeaderSize)
	rp.printf("========================================\n")
}

func (rp *Reporter) Tag(t *Tag) {
	rp.printf("%s\n", FormatTag(t))
}

// Err returns the first write error, if any.
func (rp *Reporter) Err() error {
	return rp.err
}

func (rp *Reporter) printf(format string, args ...interface{}) {
	if rp.err != nil {
		return
	}
	_, rp.err = fmt.Fprintf(rp.w, format, args...)
}

// FormatTag renders t as
//
//	[ VIDEO]     50     40     21| key frame | AVC
func FormatTag(t *Tag) string {
	line := fmt.Sprintf("[%6s] %6d %6d %6d|", t.Header.Type, t.Header.DataSize, t.Header.Timestamp, t.PrevTagSize)
	if fields := FormatFields(t); fields != "" {
		line += " " + fields
	}

	return line
}

// FormatFields renders the analyzer output of an audio or video tag.
func FormatFields(t *Tag) string {
	switch {
	case t.Audio != nil:
		return t.Audio.String()
	case t.Video != nil:
		return t.Video.String()
	}

	return ""
}

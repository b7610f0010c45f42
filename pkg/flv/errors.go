package flv

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedHeader is returned when the file header is short or not signed "FLV".
	ErrMalformedHeader = errors.New("flv: malformed header")

	// ErrTruncatedTag marks end of input inside (or right at) a tag header.
	// Reader treats it as the normal end of the stream.
	ErrTruncatedTag = errors.New("flv: truncated tag")

	// ErrTruncatedPayload is returned when input ends inside a declared payload.
	ErrTruncatedPayload = errors.New("flv: truncated payload")

	// ErrUnknownTagType is never fatal; it is only logged with the tag offset.
	ErrUnknownTagType = errors.New("flv: unknown tag type")
)

// ParseError ties a sentinel error to the input byte offset where it happened.
type ParseError struct {
	Offset int64
	Err    error
	Msg    string
}

func newParseError(offset int64, err error, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Offset: offset,
		Err:    err,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %d", e.Err, e.Offset)
	}

	return fmt.Sprintf("%s at offset %d: %s", e.Err, e.Offset, e.Msg)
}

func (e *ParseError) Cause() error {
	return e.Err
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// OffsetOf returns the offset carried by err, or -1.
func OffsetOf(err error) int64 {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Offset
	}

	return -1
}

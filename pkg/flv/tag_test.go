package flv

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTagHeader(t *testing.T) {
	in := []byte{0x09, 0x00, 0x00, 0x32, 0x00, 0x01, 0x90, 0x01, 0x00, 0x00, 0x00}
	th, err := ReadTagHeader(bytes.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, TagTypeVideo, th.Type)
	assert.Equal(t, uint32(50), th.DataSize)
	assert.Equal(t, uint32(400), th.Timestamp)
	assert.Equal(t, uint32(0x01000000), th.StreamID)
	assert.Equal(t, uint32(61), th.Size())

	// the extension byte goes back out untouched
	assert.Equal(t, in, th.Bytes())
}

func TestReadTagHeaderTruncated(t *testing.T) {
	for _, n := range []int{0, 1, 10} {
		_, err := ReadTagHeader(bytes.NewReader(make([]byte, n)))
		require.Error(t, err)
		assert.Equal(t, ErrTruncatedTag, errors.Cause(err), "%d bytes", n)
	}
}

func TestTagTypeString(t *testing.T) {
	assert.Equal(t, "AUDIO", TagTypeAudio.String())
	assert.Equal(t, "VIDEO", TagTypeVideo.String())
	assert.Equal(t, "SCRIPT", TagTypeScript.String())
	assert.Equal(t, "UNKNOWN", TagType(7).String())
	assert.False(t, TagType(7).Known())
}

func TestParseTagType(t *testing.T) {
	typ, ok := ParseTagType(" Video")
	assert.True(t, ok)
	assert.Equal(t, TagTypeVideo, typ)

	typ, ok = ParseTagType("data")
	assert.True(t, ok)
	assert.Equal(t, TagTypeScript, typ)

	_, ok = ParseTagType("subtitle")
	assert.False(t, ok)
}

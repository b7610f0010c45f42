package flv

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) ([]*Tag, error) {
	t.Helper()

	var tags []*Tag
	for {
		tag, err := r.ReadTag()
		if err == io.EOF {
			return tags, nil
		}
		if err != nil {
			return tags, err
		}

		if tag.Data != nil {
			tag.Data = append([]byte(nil), tag.Data...)
		}
		tags = append(tags, tag)
	}
}

func TestReaderConsumesWholeFile(t *testing.T) {
	tags := sampleTags()

	for _, trailer := range []bool{false, true} {
		in := buildFLV(NewHeader(FlagAudio|FlagVideo), trailer, tags...)

		r := NewReader(bytes.NewReader(in))
		got, err := readAll(t, r)
		require.NoError(t, err)
		require.Len(t, got, len(tags))

		want := int64(HeaderLength)
		for _, tt := range tags {
			want += PrevTagSizeLen + TagHeaderLength + int64(len(tt.data))
		}
		if trailer {
			want += PrevTagSizeLen
		}
		assert.Equal(t, want, r.Offset())
		assert.Equal(t, int64(len(in)), r.Offset())

		// stays done
		_, err = r.ReadTag()
		assert.Equal(t, io.EOF, err)
	}
}

func TestReaderTags(t *testing.T) {
	tags := sampleTags()
	in := buildFLV(NewHeader(FlagAudio|FlagVideo), true, tags...)

	r := NewReader(bytes.NewReader(in))
	r.KeepPayload(TagTypeVideo)
	got, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, got, len(tags))

	offset := int64(HeaderLength)
	prev := uint32(0)
	for i, tag := range got {
		offset += PrevTagSizeLen

		assert.Equal(t, tags[i].typ, tag.Type())
		assert.Equal(t, uint32(len(tags[i].data)), tag.Header.DataSize)
		assert.Equal(t, tags[i].ts, tag.Header.Timestamp)
		assert.Equal(t, prev, tag.PrevTagSize)
		assert.Equal(t, offset, tag.Offset)

		switch tag.Type() {
		case TagTypeVideo:
			assert.Equal(t, tags[i].data, tag.Data)
			require.NotNil(t, tag.Video)
			assert.Nil(t, tag.Audio)
		case TagTypeAudio:
			assert.Nil(t, tag.Data)
			require.NotNil(t, tag.Audio)
			assert.Nil(t, tag.Video)
		case TagTypeScript:
			assert.Nil(t, tag.Data)
			assert.Nil(t, tag.Audio)
			assert.Nil(t, tag.Video)
		}

		offset += TagHeaderLength + int64(len(tags[i].data))
		prev = tag.Header.Size()
	}

	assert.Equal(t, FrameKey, got[1].Video.FrameType)
	assert.Equal(t, VideoAVC, got[1].Video.Codec)
	assert.Equal(t, SoundAAC, got[2].Audio.Codec)
	assert.Equal(t, SoundMP3, got[5].Audio.Codec)
}

func TestReaderHeaderPadding(t *testing.T) {
	h := NewHeader(FlagVideo)
	h.HeaderSize = 12
	h.Padding = []byte{0xaa, 0xbb, 0xcc}

	in := buildFLV(h, false, testTag{typ: TagTypeVideo, data: payload(0x17, 8)})
	r := NewReader(bytes.NewReader(in))

	got, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(16), got[0].Offset)
	assert.Equal(t, h.Padding, r.Header().Padding)
}

func TestReaderUnknownTagType(t *testing.T) {
	tags := []testTag{
		{typ: TagTypeVideo, data: payload(0x17, 10)},
		{typ: TagType(0x33), data: payload(0xff, 17)},
		{typ: TagTypeAudio, ts: 10, data: payload(0x2F, 5)},
	}
	in := buildFLV(NewHeader(FlagAudio|FlagVideo), false, tags...)

	got, err := readAll(t, NewReader(bytes.NewReader(in)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "UNKNOWN", got[1].Type().String())
	assert.Nil(t, got[1].Audio)
	assert.Nil(t, got[1].Video)

	// still aligned after the skip
	assert.Equal(t, TagTypeAudio, got[2].Type())
	assert.Equal(t, uint32(10), got[2].Header.Timestamp)
	assert.Equal(t, uint32(28), got[2].PrevTagSize)
}

func TestReaderEmptyPayload(t *testing.T) {
	in := buildFLV(NewHeader(FlagAudio|FlagVideo), false,
		testTag{typ: TagTypeAudio},
		testTag{typ: TagTypeVideo},
		testTag{typ: TagTypeVideo, data: payload(0x27, 3)},
	)

	r := NewReader(bytes.NewReader(in))
	r.KeepPayload(TagTypeVideo)
	got, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Nil(t, got[0].Audio)
	assert.Nil(t, got[1].Video)
	assert.Empty(t, got[1].Data)
	require.NotNil(t, got[2].Video)
	assert.Equal(t, FrameInter, got[2].Video.FrameType)
}

func TestReaderTruncatedPayload(t *testing.T) {
	tags := sampleTags()
	tags[len(tags)-1].data = payload(0x27, 50)
	full := buildFLV(NewHeader(FlagAudio|FlagVideo), false, tags...)

	// cut 2 bytes into the payload of the last tag
	cut := len(full) - 50 + 2
	in := full[:cut]

	for _, keep := range []bool{false, true} {
		r := NewReader(bytes.NewReader(in))
		if keep {
			r.KeepPayload(TagTypeAudio, TagTypeVideo, TagTypeScript)
		}

		got, err := readAll(t, r)
		require.Error(t, err)
		assert.Equal(t, ErrTruncatedPayload, errors.Cause(err))
		assert.Equal(t, int64(cut), OffsetOf(err))
		assert.Contains(t, err.Error(), "declares 50 bytes, got 2")

		// every earlier tag came out unchanged
		require.Len(t, got, len(tags)-1)
		for i, tag := range got {
			assert.Equal(t, tags[i].typ, tag.Type())
			assert.Equal(t, uint32(len(tags[i].data)), tag.Header.DataSize)
			if keep {
				assert.Equal(t, tags[i].data, tag.Data)
			}
		}

		// sticky
		_, err = r.ReadTag()
		assert.Equal(t, ErrTruncatedPayload, errors.Cause(err))
	}
}

func TestReaderTruncatedTagHeader(t *testing.T) {
	in := buildFLV(NewHeader(FlagVideo), false,
		testTag{typ: TagTypeVideo, data: payload(0x17, 10)},
		testTag{typ: TagTypeVideo, data: payload(0x27, 10)},
	)

	// end of input inside the second tag header is a normal stop
	cut := len(in) - 10 - 5
	r := NewReader(bytes.NewReader(in[:cut]))
	got, err := readAll(t, r)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(cut), r.Offset())
}

func TestReaderMalformedHeader(t *testing.T) {
	in := buildFLV(NewHeader(FlagVideo), false, testTag{typ: TagTypeVideo, data: payload(0x17, 10)})
	copy(in, "XYZ")

	r := NewReader(bytes.NewReader(in))
	_, err := r.ReadTag()
	require.Error(t, err)
	assert.Equal(t, ErrMalformedHeader, errors.Cause(err))

	_, err = r.ReadHeader()
	assert.Equal(t, ErrMalformedHeader, errors.Cause(err))
}

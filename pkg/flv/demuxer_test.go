package flv

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemuxerAudioExtraction(t *testing.T) {
	tags := sampleTags()
	in := buildFLV(NewHeader(FlagAudio|FlagVideo), true, tags...)

	var want []byte
	for _, tt := range filterTags(tags, TagTypeAudio) {
		want = append(want, tt.data[1:]...)
	}

	var audio bytes.Buffer
	var seen []TagType
	stats, err := NewDemuxer(bytes.NewReader(in),
		WithAudioSink(&audio),
		WithTagHook(func(tag *Tag) { seen = append(seen, tag.Type()) }),
	).Run()
	require.NoError(t, err)

	assert.Equal(t, want, audio.Bytes())
	assert.Equal(t, int64(len(want)), stats.AudioBytes)
	assert.Equal(t, 7, stats.Tags)
	assert.Equal(t, 3, stats.Audio)
	assert.Equal(t, 3, stats.Video)
	assert.Equal(t, 1, stats.Script)
	assert.Equal(t, 0, stats.Unknown)
	assert.Equal(t, int64(len(in)), stats.Bytes)
	assert.Len(t, seen, 7)
}

func TestDemuxerUnknownTagType(t *testing.T) {
	in := buildFLV(NewHeader(FlagVideo), false,
		testTag{typ: TagType(0x42), data: payload(0, 9)},
		testTag{typ: TagTypeVideo, data: payload(0x17, 9)},
	)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	stats, err := NewDemuxer(bytes.NewReader(in), WithLogger(logger)).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 1, stats.Video)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == ErrUnknownTagType.Error() {
			warned = true
			assert.Equal(t, int64(13), e.Data["offset"])
		}
	}
	assert.True(t, warned)
}

func TestDemuxerTruncatedKeepsOutput(t *testing.T) {
	tags := sampleTags()
	tags = append(tags, testTag{typ: TagTypeAudio, ts: 99, data: payload(0x2F, 40)})
	in := buildFLV(NewHeader(FlagAudio|FlagVideo), false, tags...)
	in = in[:len(in)-38]

	var audio bytes.Buffer
	stats, err := NewDemuxer(bytes.NewReader(in), WithAudioSink(&audio)).Run()
	require.Error(t, err)
	assert.Equal(t, ErrTruncatedPayload, errors.Cause(err))
	assert.Equal(t, int64(len(in)), OffsetOf(err))

	var want []byte
	for _, tt := range filterTags(tags[:len(tags)-1], TagTypeAudio) {
		want = append(want, tt.data[1:]...)
	}
	assert.Equal(t, want, audio.Bytes())
	assert.Equal(t, len(tags)-1, stats.Tags)
}

func TestDemuxerMalformedHeader(t *testing.T) {
	in := buildFLV(NewHeader(FlagVideo), false, testTag{typ: TagTypeVideo, data: payload(0x17, 9)})
	copy(in, "XYZ")

	var out, report bytes.Buffer
	stats, err := NewDemuxer(bytes.NewReader(in),
		WithRemuxer(NewRemuxer(&out)),
		WithReporter(NewReporter(&report)),
	).Run()
	require.Error(t, err)
	assert.Equal(t, ErrMalformedHeader, errors.Cause(err))
	assert.Equal(t, 0, stats.Tags)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, report.Len())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestDemuxerSinkError(t *testing.T) {
	in := buildFLV(NewHeader(FlagAudio), false, testTag{typ: TagTypeAudio, data: payload(0x2F, 9)})

	_, err := NewDemuxer(bytes.NewReader(in), WithAudioSink(failWriter{})).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "offset 13")
}

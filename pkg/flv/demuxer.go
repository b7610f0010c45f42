package flv

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Stats struct {
	Tags    int `json:"tags"`
	Audio   int `json:"audio"`
	Video   int `json:"video"`
	Script  int `json:"script"`
	Unknown int `json:"unknown"`

	Retained   uint64 `json:"retained"`
	AudioBytes int64  `json:"audio_bytes"`
	Bytes      int64  `json:"bytes"` // input bytes consumed
}

// Demuxer drives a Reader over one input and hands every tag to the
// configured sinks: the reporter, the raw audio sink and the remuxer.
type Demuxer struct {
	r      *Reader
	audio  io.Writer
	remux  *Remuxer
	report *Reporter
	onTag  func(*Tag)
	logger logrus.FieldLogger

	stats    Stats
	lastSize uint32
}

type Option func(*Demuxer)

// WithAudioSink writes every audio payload minus its first byte to w.
func WithAudioSink(w io.Writer) Option {
	return func(dm *Demuxer) {
		dm.audio = w
	}
}

func WithRemuxer(m *Remuxer) Option {
	return func(dm *Demuxer) {
		dm.remux = m
	}
}

func WithReporter(rp *Reporter) Option {
	return func(dm *Demuxer) {
		dm.report = rp
	}
}

// WithTagHook calls fn for every tag read, after the sinks.
func WithTagHook(fn func(*Tag)) Option {
	return func(dm *Demuxer) {
		dm.onTag = fn
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(dm *Demuxer) {
		dm.logger = l
	}
}

func NewDemuxer(r io.Reader, opts ...Option) *Demuxer {
	dm := &Demuxer{
		r: NewReader(r),
	}
	for _, opt := range opts {
		opt(dm)
	}

	if dm.logger == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		dm.logger = l
	}

	if dm.audio != nil {
		dm.r.KeepPayload(TagTypeAudio)
	}
	if dm.remux != nil {
		for _, t := range []TagType{TagTypeAudio, TagTypeVideo, TagTypeScript} {
			if dm.remux.Retains(t) {
				dm.r.KeepPayload(t)
			}
		}
	}

	return dm
}

// Header is the input header, nil until Run has read it.
func (dm *Demuxer) Header() *Header {
	return dm.r.Header()
}

// Run reads the whole input. It returns nil at a clean end of input. Output
// written before a failure is kept, and the remuxer is closed either way.
func (dm *Demuxer) Run() (*Stats, error) {
	h, err := dm.r.ReadHeader()
	if err != nil {
		dm.logger.WithFields(logrus.Fields{"event": "ReadHeader", "offset": OffsetOf(err)}).Error(err)
		return &dm.stats, err
	}

	dm.logger.WithFields(logrus.Fields{
		"event":      "ReadHeader",
		"version":    h.Version,
		"flags":      h.Flags,
		"headerSize": h.HeaderSize,
	}).Debug("flv header")

	if dm.report != nil {
		dm.report.Header(h)
	}
	if dm.remux != nil {
		dm.remux.SetHeader(h)
	}

	err = dm.loop()
	dm.stats.Bytes = dm.r.Offset()

	if dm.remux != nil {
		if cerr := dm.remux.Close(); cerr != nil && err == nil {
			err = cerr
		}
		dm.stats.Retained = dm.remux.Count()
	}
	if dm.report != nil && err == nil {
		err = errors.Wrap(dm.report.Err(), "write report")
	}

	if err != nil {
		dm.logger.WithFields(logrus.Fields{"event": "Run", "offset": OffsetOf(err)}).Error(err)
	} else {
		dm.logger.WithFields(logrus.Fields{
			"event": "Run",
			"tags":  dm.stats.Tags,
			"bytes": dm.stats.Bytes,
		}).Info("flv done")
	}

	return &dm.stats, err
}

func (dm *Demuxer) loop() error {
	for {
		t, err := dm.r.ReadTag()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := dm.handle(t); err != nil {
			return err
		}
	}
}

func (dm *Demuxer) handle(t *Tag) error {
	dm.checkPrevTagSize(t)
	dm.stats.Tags++

	if dm.report != nil {
		dm.report.Tag(t)
	}

	switch t.Header.Type {
	case TagTypeAudio:
		dm.stats.Audio++
		if err := dm.writeAudio(t); err != nil {
			return err
		}
	case TagTypeVideo:
		dm.stats.Video++
	case TagTypeScript:
		dm.stats.Script++
	default:
		dm.stats.Unknown++
		dm.logger.WithFields(logrus.Fields{
			"event":  "ReadTag",
			"offset": t.Offset,
			"type":   uint8(t.Header.Type),
			"size":   t.Header.DataSize,
		}).Warn(ErrUnknownTagType)
	}

	if dm.remux != nil {
		if err := dm.remux.WriteTag(t); err != nil {
			return err
		}
	}

	if dm.onTag != nil {
		dm.onTag(t)
	}

	dm.lastSize = t.Header.Size()
	return nil
}

func (dm *Demuxer) writeAudio(t *Tag) error {
	if dm.audio == nil || len(t.Data) <= 1 {
		return nil
	}

	n, err := dm.audio.Write(t.Data[1:])
	dm.stats.AudioBytes += int64(n)
	if err != nil {
		return errors.Wrapf(err, "write audio payload of tag at offset %d", t.Offset)
	}

	if f, ok := dm.audio.(flusher); ok {
		return errors.Wrap(f.Flush(), "flush audio output")
	}
	return nil
}

// PreviousTagSize is not trusted on input, a mismatch is only logged.
func (dm *Demuxer) checkPrevTagSize(t *Tag) {
	if t.PrevTagSize == dm.lastSize {
		return
	}

	dm.logger.WithFields(logrus.Fields{
		"event":    "ReadTag",
		"offset":   t.Offset,
		"got":      t.PrevTagSize,
		"expected": dm.lastSize,
	}).Debug("previous tag size mismatch")
}

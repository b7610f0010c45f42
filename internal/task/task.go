package task

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"flvkit/internal/metrics"
	"flvkit/internal/sink"
	"flvkit/pkg/flv"
)

const (
	audioSuffix = "_audio.es"
	videoSuffix = "_video.flv"
)

type Options struct {
	Audio  bool          // extract raw audio
	Video  bool          // write the remuxed copy
	Retain []flv.TagType // tag types kept in the remuxed copy
	Dir    string        // output directory, next to the input when empty
	Quiet  bool          // no per tag report
}

// Result is the outcome of one input.
type Result struct {
	Input     string
	RunID     string
	Stats     *flv.Stats
	AudioPath string // empty when no audio was written
	VideoPath string // empty when no tag was retained
	Err       error
}

type Runner struct {
	opts    Options
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewRunner returns a Runner. m may be nil.
func NewRunner(opts Options, logger logrus.FieldLogger, m *metrics.Metrics) *Runner {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		logger = l
	}

	return &Runner{
		opts:    opts,
		logger:  logger,
		metrics: m,
	}
}

// OutputPaths returns where the audio and remuxed outputs of input go.
func (r *Runner) OutputPaths(input string) (audio, video string) {
	return outputPaths(r.outputStem(input))
}

// outputStem is the output path of input without the stream suffix.
func (r *Runner) outputStem(input string) string {
	dir := r.opts.Dir
	if dir == "" {
		dir = filepath.Dir(input)
	}

	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, base)
}

func outputPaths(stem string) (audio, video string) {
	return stem + audioSuffix, stem + videoSuffix
}

// uniqueStems gives every input its own outputs: a stem already taken by an
// earlier input gets a _1, _2... suffix.
func uniqueStems(stems []string) []string {
	taken := make(map[string]bool, len(stems))
	for _, stem := range stems {
		taken[stem] = false
	}

	out := make([]string, len(stems))
	for i, stem := range stems {
		if !taken[stem] {
			taken[stem] = true
			out[i] = stem
			continue
		}

		for n := 1; ; n++ {
			alt := fmt.Sprintf("%s_%d", stem, n)
			if _, ok := taken[alt]; !ok {
				taken[alt] = true
				out[i] = alt
				break
			}
		}
	}

	return out
}

// Run parses one input and writes its outputs, reporting to report when
// it is not nil and the runner is not quiet.
func (r *Runner) Run(input string, report io.Writer) *Result {
	return r.run(input, r.outputStem(input), report)
}

func (r *Runner) run(input, stem string, report io.Writer) *Result {
	res := &Result{
		Input: input,
		RunID: uuid.New().String(),
	}
	logger := r.logger.WithFields(logrus.Fields{
		"run":   res.RunID,
		"input": input,
	})

	f, err := os.Open(input)
	if err != nil {
		res.Err = errors.Wrap(err, "open input")
		logger.WithField("event", "Open").Error(res.Err)
		r.observe(res)
		return res
	}
	defer f.Close()

	audioPath, videoPath := outputPaths(stem)
	opts := []flv.Option{flv.WithLogger(logger)}

	var audio, video *sink.File
	if r.opts.Audio {
		audio = sink.NewFile(audioPath)
		opts = append(opts, flv.WithAudioSink(audio))
	}
	if r.opts.Video {
		video = sink.NewFile(videoPath)
		opts = append(opts, flv.WithRemuxer(flv.NewRemuxer(video, r.opts.Retain...)))
	}

	var out *bufio.Writer
	if report != nil && !r.opts.Quiet {
		out = bufio.NewWriter(report)
		opts = append(opts, flv.WithReporter(flv.NewReporter(out)))
	}
	if r.metrics != nil {
		opts = append(opts, flv.WithTagHook(r.metrics.ObserveTag))
	}

	res.Stats, res.Err = flv.NewDemuxer(f, opts...).Run()

	if out != nil {
		if err := out.Flush(); err != nil && res.Err == nil {
			res.Err = errors.Wrap(err, "flush report")
		}
	}
	res.AudioPath = closeSink(audio, &res.Err)
	res.VideoPath = closeSink(video, &res.Err)

	logger.WithFields(logrus.Fields{
		"event": "Run",
		"audio": res.AudioPath,
		"video": res.VideoPath,
	}).Debug("outputs")

	r.observe(res)
	return res
}

func (r *Runner) observe(res *Result) {
	if r.metrics != nil {
		r.metrics.ObserveRun(res.Stats, res.Err)
	}
}

// closeSink closes s and returns its path if the file was created.
func closeSink(s *sink.File, errp *error) string {
	if s == nil {
		return ""
	}

	if err := s.Close(); err != nil && *errp == nil {
		*errp = err
	}
	if !s.Created() {
		return ""
	}

	return s.Path()
}

// RunBatch runs inputs on a pool of workers goroutines. Each report is
// buffered and written to report in input order once all runs are done.
func (r *Runner) RunBatch(inputs []string, workers int, report io.Writer) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(inputs))
	reports := make([]bytes.Buffer, len(inputs))

	stems := make([]string, len(inputs))
	for i, input := range inputs {
		stems[i] = r.outputStem(input)
	}
	stems = uniqueStems(stems)

	var wg sync.WaitGroup
	p, err := ants.NewPoolWithFunc(workers, func(args interface{}) {
		defer wg.Done()

		i := args.(int)
		var w io.Writer
		if report != nil {
			w = &reports[i]
		}
		results[i] = r.run(inputs[i], stems[i], w)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer p.Release()

	for i := range inputs {
		wg.Add(1)
		if err := p.Invoke(i); err != nil {
			wg.Done()
			results[i] = &Result{Input: inputs[i], Err: errors.Wrap(err, "submit run")}
		}
	}
	wg.Wait()

	if report != nil {
		for i := range reports {
			if _, err := reports[i].WriteTo(report); err != nil {
				return results, errors.Wrap(err, "write report")
			}
		}
	}

	return results, nil
}

// Failed counts results with an error.
func Failed(results []*Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}

	return n
}

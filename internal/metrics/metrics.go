package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"flvkit/pkg/flv"
)

const namespace = "flvkit"

// run results
const (
	ResultOK               = "ok"
	ResultMalformedHeader  = "malformed_header"
	ResultTruncatedPayload = "truncated_payload"
	ResultError            = "error"
)

// Metrics holds the counters of one process. Each instance owns its registry
// so tests and servers do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	Tags     *prometheus.CounterVec
	TagBytes *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	InBytes  prometheus.Counter
	Retained prometheus.Counter
	AudioOut prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Tags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_total",
			Help:      "Tags read, by tag type.",
		}, []string{"type"}),
		TagBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tag_payload_bytes_total",
			Help:      "Declared payload bytes of tags read, by tag type.",
		}, []string{"type"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished parse runs, by result.",
		}, []string{"result"}),
		InBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Input bytes consumed.",
		}),
		Retained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remuxed_tags_total",
			Help:      "Tags written to remuxed outputs.",
		}),
		AudioOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "Raw audio bytes extracted.",
		}),
	}

	m.registry.MustRegister(m.Tags, m.TagBytes, m.Runs, m.InBytes, m.Retained, m.AudioOut)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTag is meant to be installed with flv.WithTagHook.
func (m *Metrics) ObserveTag(t *flv.Tag) {
	typ := t.Type().String()
	m.Tags.WithLabelValues(typ).Inc()
	m.TagBytes.WithLabelValues(typ).Add(float64(t.Header.DataSize))
}

func (m *Metrics) ObserveRun(stats *flv.Stats, err error) {
	m.Runs.WithLabelValues(Result(err)).Inc()
	if stats == nil {
		return
	}

	m.InBytes.Add(float64(stats.Bytes))
	m.Retained.Add(float64(stats.Retained))
	m.AudioOut.Add(float64(stats.AudioBytes))
}

// Result classifies the outcome of a run.
func Result(err error) string {
	switch errors.Cause(err) {
	case nil:
		return ResultOK
	case flv.ErrMalformedHeader:
		return ResultMalformedHeader
	case flv.ErrTruncatedPayload:
		return ResultTruncatedPayload
	}

	return ResultError
}

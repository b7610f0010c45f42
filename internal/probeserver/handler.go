package probeserver

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"flvkit/internal/config"
	"flvkit/internal/errno"
	"flvkit/internal/lru"
	"flvkit/pkg/flv"
)

type HeaderInfo struct {
	Version    uint8  `json:"version"`
	Flags      uint8  `json:"flags"`
	HasAudio   bool   `json:"has_audio"`
	HasVideo   bool   `json:"has_video"`
	HeaderSize uint32 `json:"header_size"`
}

type TagInfo struct {
	Type        string `json:"type"`
	Offset      int64  `json:"offset"`
	DataSize    uint32 `json:"data_size"`
	Timestamp   uint32 `json:"timestamp"`
	PrevTagSize uint32 `json:"prev_tag_size"`
	Fields      string `json:"fields,omitempty"`
}

// ProbeResult is the data of a /v1/probe response.
type ProbeResult struct {
	Header *HeaderInfo `json:"header,omitempty"`
	Tags   []TagInfo   `json:"tags"`
	Stats  *flv.Stats  `json:"stats"`
}

// ProbeError is the data of a failed parse: where it stopped and what was
// read up to there.
type ProbeError struct {
	Offset int64        `json:"offset"`
	Detail string       `json:"detail"`
	Result *ProbeResult `json:"result,omitempty"`
}

type handler struct {
	s *Server
}

func newHandler(s *Server) *handler {
	return &handler{s: s}
}

func (h *handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, errno.ErrOK.WithData("pong").WithID(c.GetString(traceKey)))
}

func (h *handler) prometheus(c *gin.Context) {
	promhttp.HandlerFor(h.s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) rateLimit(c *gin.Context) {
	if s.limiter.Allow() {
		return
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, errno.ErrTooManyRequests.WithID(c.GetString(traceKey)))
}

func (h *handler) probe(c *gin.Context) {
	id := c.GetString(traceKey)
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	key := lru.KeyOf(body)
	if v, hit := h.s.cache.Get(key); hit {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, errno.ErrOK.WithData(v).WithID(id))
		return
	}
	c.Header("X-Cache", "miss")

	res := &ProbeResult{Tags: []TagInfo{}}
	dm := flv.NewDemuxer(bytes.NewReader(body),
		flv.WithLogger(h.s.logger.WithField("id", id)),
		flv.WithTagHook(func(t *flv.Tag) {
			h.s.metrics.ObserveTag(t)
			res.Tags = append(res.Tags, TagInfo{
				Type:        t.Type().String(),
				Offset:      t.Offset,
				DataSize:    t.Header.DataSize,
				Timestamp:   t.Header.Timestamp,
				PrevTagSize: t.PrevTagSize,
				Fields:      flv.FormatFields(t),
			})
		}),
	)

	stats, err := dm.Run()
	h.s.metrics.ObserveRun(stats, err)
	res.Stats = stats
	if hdr := dm.Header(); hdr != nil {
		res.Header = &HeaderInfo{
			Version:    hdr.Version,
			Flags:      hdr.Flags,
			HasAudio:   hdr.HasAudio(),
			HasVideo:   hdr.HasVideo(),
			HeaderSize: hdr.HeaderSize,
		}
	}

	if err != nil {
		h.parseFailed(c, err, res)
		return
	}

	h.s.cache.Add(key, res)
	c.JSON(http.StatusOK, errno.ErrOK.WithData(res).WithID(id))
}

func (h *handler) remux(c *gin.Context) {
	id := c.GetString(traceKey)

	types, err := config.ParseTagTypes(strings.Split(c.DefaultQuery("retain", "video"), ","))
	if err != nil {
		c.JSON(http.StatusBadRequest, errno.ErrParam.WithData(err.Error()).WithID(id))
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}

	var out bytes.Buffer
	m := flv.NewRemuxer(&out, types...)
	stats, err := flv.NewDemuxer(bytes.NewReader(body),
		flv.WithRemuxer(m),
		flv.WithLogger(h.s.logger.WithField("id", id)),
		flv.WithTagHook(h.s.metrics.ObserveTag),
	).Run()
	h.s.metrics.ObserveRun(stats, err)

	if err != nil && m.Count() == 0 {
		h.parseFailed(c, err, nil)
		return
	}
	if err != nil {
		// keep what was remuxed before the failure
		c.Header("X-Flv-Errno", strconv.Itoa(errnoOf(err).Code()))
		c.Header("X-Flv-Error-Offset", strconv.FormatInt(flv.OffsetOf(err), 10))
	}

	c.Header("X-Flv-Tags", strconv.FormatUint(m.Count(), 10))
	c.Data(http.StatusOK, "video/x-flv", out.Bytes())
}

// readBody reads at most MaxBodySize bytes and answers the request itself
// when it cannot.
func (h *handler) readBody(c *gin.Context) ([]byte, bool) {
	id := c.GetString(traceKey)
	limit := h.s.cfg.MaxBodySize

	body, err := ioutil.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		h.s.logger.WithFields(logrus.Fields{"event": "ReadBody", "id": id}).Error(err)
		c.JSON(http.StatusBadRequest, errno.ErrParam.WithData("unreadable body").WithID(id))
		return nil, false
	}
	if int64(len(body)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, errno.ErrBodyTooLarge.WithData(limit).WithID(id))
		return nil, false
	}

	return body, true
}

func errnoOf(err error) errno.Error {
	switch errors.Cause(err) {
	case flv.ErrMalformedHeader:
		return errno.ErrMalformedHeader
	case flv.ErrTruncatedPayload:
		return errno.ErrTruncatedPayload
	}

	return errno.ErrServer
}

func (h *handler) parseFailed(c *gin.Context, err error, res *ProbeResult) {
	c.JSON(http.StatusOK, errnoOf(err).WithData(&ProbeError{
		Offset: flv.OffsetOf(err),
		Detail: err.Error(),
		Result: res,
	}).WithID(c.GetString(traceKey)))
}

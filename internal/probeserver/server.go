package probeserver

import (
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"flvkit/internal/config"
	"flvkit/internal/lru"
	"flvkit/internal/metrics"
)

// Server probes and remuxes FLV files uploaded over HTTP.
type Server struct {
	cfg     config.ServerConfig
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	limiter *rate.Limiter
	cache   *lru.Cache
	engine  *gin.Engine
}

// New builds the server. logger and m may be nil.
func New(cfg config.ServerConfig, logger logrus.FieldLogger, m *metrics.Metrics) *Server {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		logger = l
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		cache:   lru.New(cfg.CacheEntries),
	}
	s.engine = s.setupRouter()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run() error {
	s.logger.WithFields(logrus.Fields{"event": "Listen", "addr": s.cfg.Listen}).Info("probe server")

	if err := s.engine.Run(s.cfg.Listen); err != nil {
		s.logger.WithField("event", "Listen").Error(err)
		return err
	}

	return nil
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceID, s.accessLog)

	h := newHandler(s)
	apis := []apiEntry{
		{method: "GET", url: "/ping", handle: h.ping},
		{method: "POST", url: "/v1/probe", handle: h.probe, limited: true},
		{method: "POST", url: "/v1/remux", handle: h.remux, limited: true},
		{method: "GET", url: "/metrics", handle: h.prometheus},
	}

	for _, api := range apis {
		handlers := []gin.HandlerFunc{api.handle}
		if api.limited {
			handlers = append([]gin.HandlerFunc{s.rateLimit}, handlers...)
		}

		switch api.method {
		case "GET":
			r.GET(api.url, handlers...)
		case "POST":
			r.POST(api.url, handlers...)
		}
	}

	return r
}

type apiEntry struct {
	method  string          //请求方法
	url     string          //请求url
	handle  gin.HandlerFunc //API入口
	limited bool            //是否限流
}

const traceKey = "trace-id"

func traceID(c *gin.Context) {
	id := uuid.New().String()
	c.Set(traceKey, id)

	c.Header("X-Request-Id", id)
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.WithFields(logrus.Fields{
		"event":   "Request",
		"id":      c.GetString(traceKey),
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}).Info("request")
}

// Package http wires the gin route tree and the server lifecycle of the
// conversion API.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/internal/interfaces/http/handlers"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	ConvertHandler *handlers.ConvertHandler
	HealthHandler  *handlers.HealthHandler

	Logger    logging.Logger
	Collector monprom.MetricsCollector

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter constructs the complete route tree: public health probes, the
// metrics endpoint, and the v1 conversion API.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.ConvertHandler != nil {
		api.POST("/convert", cfg.ConvertHandler.Convert)
	}

	return r
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)),
		)
	}
}

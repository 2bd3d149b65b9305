package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/metrics"
	"trading-journal/internal/storage"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Trades        storage.TradeStore
	Samples       storage.PriceSampleStore    // optional
	Snapshots     storage.MetricSnapshotStore // optional
	Aggregator    *metrics.Aggregator
	Presets       benchmark.Presets
	DefaultPreset string
	Engine        domain.EngineConfig
	Auth          *Authenticator
	Limiter       *RateLimiter // nil disables throttling
	Ready         ReadyFunc
	Logger        *zap.Logger
}

// NewRouter wires middleware and handlers.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(log))

	NewHealthHandler(d.Ready).Register(r)

	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(d.Auth))
	if d.Limiter != nil {
		v1.Use(d.Limiter.Middleware())
	}

	NewTradesHandler(d.Trades, d.Samples, d.Aggregator, log).Register(v1)
	NewMetricsHandler(d.Aggregator, d.Snapshots, d.Presets, d.DefaultPreset, d.Engine, log).Register(v1)

	return r
}

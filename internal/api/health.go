package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trading-journal/internal/observability"
)

// ReadyFunc reports whether backing stores are reachable.
type ReadyFunc func(ctx context.Context) error

// HealthHandler serves liveness, readiness and Prometheus endpoints.
type HealthHandler struct {
	ready ReadyFunc
}

// NewHealthHandler creates a health handler. A nil ready func always reports ready.
func NewHealthHandler(ready ReadyFunc) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(observability.Handler()))
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	Ok(c, gin.H{"status": "ok"}, nil)
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			Error(c, http.StatusServiceUnavailable, "not ready", map[string]any{"error": err.Error()})
			return
		}
	}
	Ok(c, gin.H{"status": "ready"}, nil)
}

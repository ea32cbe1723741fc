package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keris/scholar-backend/internal/response"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthHandler answers liveness probes.
type HealthHandler struct {
	check HealthCheck
}

// NewHealthHandler creates a HealthHandler. A nil check always reports ok.
func NewHealthHandler(check HealthCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.check(ctx); err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("health check failed")
			response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a dependency the API cannot serve without
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	timeout   time.Duration
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(name, version string, db Pinger) *HealthHandler {
	return &HealthHandler{
		name:      name,
		version:   version,
		db:        db,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// LiveResponse is the liveness check payload
type LiveResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Live godoc
// @Summary      Liveness check
// @Tags         health
// @Success      200 {object} dto.Response
// @Router       /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, LiveResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @Summary      Readiness check, pings the database
// @Tags         health
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.L(ctx).Warn("Readiness check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Database is not reachable")
		return
	}
	h.Success(c, gin.H{"status": "ready", "database": "ok"})
}

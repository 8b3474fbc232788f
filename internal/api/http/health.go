package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	deps        map[string]Pinger
}

func NewHealthHandler(serviceName, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		deps:        deps,
	}
}

// HealthCheck reports the process as healthy and each dependency as up or down.
// A down dependency degrades the status but never fails the check.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	var deps map[string]string
	if len(h.deps) > 0 {
		deps = make(map[string]string, len(h.deps))
		for name, p := range h.deps {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
			if err := p.Ping(pingCtx); err != nil {
				deps[name] = "down"
				status = "degraded"
			} else {
				deps[name] = "up"
			}
			cancel()
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Service:      h.serviceName,
		Version:      h.version,
		Dependencies: deps,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

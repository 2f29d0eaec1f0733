// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
)

// Pinger es cualquier dependencia que puede verificar su conexión (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

type readyzResponse struct {
	Status     string            `json:"status"` // ready | unavailable
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components"`
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	version string
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthController crea un controller que verifica checks en cada /readyz.
func NewHealthController(version string, checks map[string]Pinger) *HealthController {
	return &HealthController{version: version, checks: checks, timeout: 2 * time.Second}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := readyzResponse{Status: "ready", Version: c.version, Components: map[string]string{}}
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.checks[name].Ping(ctx); err != nil {
			resp.Components[name] = "error"
			resp.Status = "unavailable"
			log.Warn("readiness check failed", logger.Component(name), logger.Err(err))
			continue
		}
		resp.Components[name] = "ok"
	}

	statusCode := http.StatusOK
	if resp.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

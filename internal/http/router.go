// Package http arma el router chi de la API de autenticación.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/hellojohn-facebook/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellojohn-facebook/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/hellojohn-facebook/internal/http/errors"
	mw "github.com/dropDatabas3/hellojohn-facebook/internal/http/middlewares"
)

// RouterDeps contiene las dependencias del router.
type RouterDeps struct {
	Facebook *authctrl.FacebookController
	Health   *healthctrl.HealthController
	// Metrics sirve /metrics; nil lo deshabilita.
	Metrics http.Handler
	// LoginTimeout acota cada intento de login (validación, exchange y /me). 0 usa el default.
	LoginTimeout time.Duration
}

const defaultLoginTimeout = 20 * time.Second

// NewRouter registra las rutas con la cadena de middlewares global.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if deps.Health != nil {
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	if deps.Facebook != nil {
		timeout := deps.LoginTimeout
		if timeout == 0 {
			timeout = defaultLoginTimeout
		}
		r.Method(http.MethodPost, "/v1/auth/facebook", mw.Chain(
			http.HandlerFunc(deps.Facebook.Login),
			mw.WithSecurityHeaders(),
			mw.WithTimeout(timeout),
		))
	}
	return r
}

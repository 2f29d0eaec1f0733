package middlewares

import (
	"net/http"
	"strings"
)

// apiHeaders van en toda respuesta del login: solo JSON, nunca HTML ni cacheable.
var apiHeaders = [][2]string{
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
}

const hstsValue = "max-age=15552000; includeSubDomains"

// WithSecurityHeaders agrega apiHeaders y HSTS cuando el request llegó por HTTPS,
// directo o detrás de un proxy que setea X-Forwarded-Proto.
func WithSecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range apiHeaders {
				h.Set(kv[0], kv[1])
			}
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middlewares

import (
	"context"
	"net/http"
	"time"
)

// Middleware decora un http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain envuelve h con mws; el primero de la lista es el más externo.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithTimeout acota el contexto del request. Las llamadas salientes que lo usan
// (Graph API, store) cortan con context.DeadlineExceeded al vencer.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

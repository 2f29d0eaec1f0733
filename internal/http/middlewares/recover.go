package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/hellojohn-facebook/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500 JSON. http.ErrAbortHandler
// se relanza para que net/http corte la conexión como siempre.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("panic in handler",
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Any("panic", rec),
					zap.Stack("stack"),
				)
				httperrors.WriteError(w, httperrors.ErrInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/allinbuy/api/pkg/logger"
	"github.com/allinbuy/api/pkg/response"
)

// Recovery catches panics in downstream handlers so one bad request cannot
// take the server down. The stack goes to the request-scoped logger (which
// carries the request_id) and the client gets a generic 500.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithCtx(r.Context()).Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError, "Error interno del servidor")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

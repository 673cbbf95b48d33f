package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/response"
)

// Recovery turns a downstream panic into a logged 500 instead of a dead
// connection. Mount it inside Logger so the request line still gets
// written for the failed request.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Error(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

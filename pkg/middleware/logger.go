package middleware

import (
	"net/http"
	"time"

	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/reqid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Logger emits one line per request with method, path, status, duration
// and client address, all tagged with the request ID. Mount it after
// reqid.Middleware so the ID is already in the context; downstream code
// reaching for logger.WithCtx gets the same tagged logger.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := logger.L.With("request_id", reqid.FromCtx(r.Context()))
		r = r.WithContext(logger.InjectLogger(r.Context(), reqLog))

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		reqLog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"duration", time.Since(start).String(),
			"ip", r.RemoteAddr,
		)
	})
}

package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// responseRecorder captures the status code and bytes written for logging.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *responseRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// StructuredLogger logs one line per completed request with status, duration,
// and size, using the request-scoped logger injected by RequestID.
func StructuredLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			reqLogger := logger
			if GetRequestID(r.Context()) != "" {
				reqLogger = GetRequestLogger(r.Context())
			}

			fields := []zap.Field{
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", recorder.written),
			}

			switch {
			case recorder.status >= 500:
				reqLogger.Error("Request completed", fields...)
			case recorder.status >= 400:
				reqLogger.Warn("Request completed", fields...)
			default:
				reqLogger.Info("Request completed", fields...)
			}
		})
	}
}

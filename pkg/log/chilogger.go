package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

// Logger returns a chi middleware writing one entry per request on l.
// Server errors log at error, client errors at warn, status polling at debug
// and everything else at info.
func Logger(l *zap.Logger, name string) func(next http.Handler) http.Handler {
	if l == nil {
		panic("log.Logger: nil *zap.Logger")
	}
	logger := l.WithOptions(zap.AddCallerSkip(1)).Named(name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if ce := logger.Check(requestLevel(r, status), r.Method+" "+r.URL.Path); ce != nil {
					ce.Write(
						zap.String("request_id", requestid.FromRequest(r)),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Int("status", status),
						zap.Int64("request_bytes", r.ContentLength),
						zap.Int("response_bytes", ww.BytesWritten()),
						zap.Duration("latency", time.Since(start)),
						zap.String("remote_addr", r.RemoteAddr),
						zap.String("user_agent", r.UserAgent()),
					)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func requestLevel(r *http.Request, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case isPolling(r):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// isPolling matches the endpoints clients hit in a loop while waiting.
func isPolling(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/api/analysis/")
}

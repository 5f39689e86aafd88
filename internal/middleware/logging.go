package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// probePaths are polled by orchestrators and scrapers; they log at debug.
var probePaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// accessRecord collects the per-request fields that inner middleware
// learns after the access logger has already wrapped the request.
type accessRecord struct {
	status      int
	bytes       int
	wroteHeader bool
	userID      string
}

type accessKey struct{}

// recordWriter counts what the handler writes into the shared record.
type recordWriter struct {
	http.ResponseWriter
	rec *accessRecord
}

func (w *recordWriter) WriteHeader(code int) {
	if w.rec.wroteHeader {
		return
	}
	w.rec.status = code
	w.rec.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordWriter) Write(b []byte) (int, error) {
	if !w.rec.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.rec.bytes += n
	return n, err
}

// noteUser attaches the authenticated user to the access log line.
func noteUser(ctx context.Context, userID string) {
	if rec, ok := ctx.Value(accessKey{}).(*accessRecord); ok {
		rec.userID = userID
	}
}

// Logger writes one access log line per request. Headers and query values
// are never logged, so session tokens and coordinates stay out of the logs.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &accessRecord{status: http.StatusOK}
			ctx := context.WithValue(r.Context(), accessKey{}, rec)

			next.ServeHTTP(&recordWriter{ResponseWriter: w, rec: rec}, r.WithContext(ctx))

			attrs := make([]slog.Attr, 0, 10)
			attrs = append(attrs,
				slog.String("request_id", GetRequestID(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("remote_addr", r.RemoteAddr),
			)
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}
			if rec.userID != "" {
				attrs = append(attrs, slog.String("user_id", rec.userID))
			}
			if traceID := GetTraceID(ctx); traceID != "" {
				attrs = append(attrs, slog.String("trace_id", traceID))
			}

			logger.LogAttrs(ctx, accessLevel(r.URL.Path, rec.status), "http request", attrs...)
		})
	}
}

func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case probePaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tiba/internal/platform/logger"
	pnet "tiba/internal/platform/net"
)

// AccessLogOptions tunes the request log. Slow of 0 never warns.
type AccessLogOptions struct {
	Slow time.Duration
}

// recorder keeps what the handler wrote for the log line
type recorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rec *recorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

// AccessLog puts a request scoped logger on the context and writes one line
// per request. Mount after RequestID.
func AccessLog(opt AccessLogOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), ""))
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			logger.C(r.Context()).WithLevel(opt.level(rec.status, took)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.written).
				Dur("elapsed", took).
				Msg("request done")
		})
	}
}

func (o AccessLogOptions) level(status int, took time.Duration) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case o.Slow > 0 && took >= o.Slow:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/api/presenter"
)

// quietPaths are probed or scraped too often to be worth a log line when they succeed.
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// LoggingMiddleware attaches a request logger to the context and logs every
// handled request. Denied logins are logged at warn level like any other 4xx.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().
			Str("correlation_id", CorrelationCtx(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(l.WithContext(r.Context())))

		if _, quiet := quietPaths[r.URL.Path]; quiet && sw.statusCode < http.StatusBadRequest {
			return
		}

		var ev *zerolog.Event
		switch {
		case sw.statusCode >= http.StatusInternalServerError:
			ev = l.Error()
		case sw.statusCode >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Int("status", sw.statusCode).
			Int("bytes", sw.written).
			Dur("duration", time.Since(start)).
			Msg("request.handled")
	})
}

// RecoverMiddleware turns a panicking handler into a 500 error page.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic.recovered")
				presenter.Page(w, r, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

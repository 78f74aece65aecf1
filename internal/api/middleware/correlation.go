package middleware

import (
	"context"
	"net/http"

	"github.com/rs/xid"
)

// CorrelationIDHeader is read from requests and echoed on every response.
// Audit entries of an attempt carry the same ID.
const CorrelationIDHeader = "X-Correlation-ID"

// correlationIDKey is shared with the service and presenter packages, which read
// the ID without importing this package.
const correlationIDKey = "correlation_id"

// maxCorrelationIDLength caps client supplied IDs before they end up in logs.
const maxCorrelationIDLength = 64

func CorrelationCtx(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithCorrelationID stores id the way CorrelationIDMiddleware does.
// Used outside of HTTP requests, e.g. by the evaluate command.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDMiddleware reuses the caller's correlation ID or generates one with xid.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" || len(id) > maxCorrelationIDLength {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}

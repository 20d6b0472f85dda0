package http

import (
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/everyio/tasktracker/internal/infra/context"
)

// TraceIDHeader carries the trace ID of a request in both directions.
const TraceIDHeader = "X-Request-ID"

// maxTraceIDLength bounds client supplied trace IDs.
const maxTraceIDLength = 128

// TracingMiddleware creates middleware that adds request tracing.
// It uses the X-Request-ID header if present, otherwise generates a new UUIDv7.
// The trace ID is added to the request context and echoed in the response.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)
		if traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		ctx := context_.WithTraceID(r.Context(), traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getTraceID(r *http.Request) string {
	if traceID := r.Header.Get(TraceIDHeader); traceID != "" && len(traceID) <= maxTraceIDLength {
		return traceID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}

	return id.String()
}

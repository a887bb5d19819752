package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// TraceHeader carries the trace id on requests and responses.
const TraceHeader = "X-Trace-Id"

type traceKey struct{}

// Trace assigns every request a trace id, honoring one supplied by the
// client, and echoes it on the response.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(TraceHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(TraceHeader, id)
		next.ServeHTTP(w, r.WithContext(WithTraceID(r.Context(), id)))
	})
}

// WithTraceID attaches a trace id to ctx. Handlers that detach work from the
// request use it to keep run log lines correlated with the request that
// started them.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceIDFromCtx returns the trace id, or "" outside a traced request.
func TraceIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

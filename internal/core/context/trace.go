package context

import "context"

// TraceContext identifies one API request across log lines.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// LogFields returns the ids as zap-style key-value pairs. Empty ids are left out.
func (t *TraceContext) LogFields() []any {
	fields := make([]any, 0, 6)
	for _, kv := range [][2]string{
		{"trace_id", t.TraceID},
		{"span_id", t.SpanID},
		{"request_id", t.RequestID},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0], kv[1])
		}
	}
	return fields
}

type traceContextKey struct{}

// WithTrace stores trace in ctx.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace of the current request or nil outside one,
// e.g. in worker jobs.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

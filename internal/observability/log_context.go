package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type logFieldsKey struct{}

// requestFields are the per-request values every log record should carry.
type requestFields struct {
	requestID string
	userID    string
}

func fieldsFrom(ctx context.Context) requestFields {
	f, _ := ctx.Value(logFieldsKey{}).(requestFields)
	return f
}

// WithRequestID tags ctx so records logged with it carry request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = id
	return context.WithValue(ctx, logFieldsKey{}, f)
}

// WithUserID tags ctx with the authenticated caller.
func WithUserID(ctx context.Context, id string) context.Context {
	f := fieldsFrom(ctx)
	f.userID = id
	return context.WithValue(ctx, logFieldsKey{}, f)
}

func RequestIDFrom(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

// ContextHandler adds trace_id, span_id, request_id and user_id from the
// record's context. Code below the HTTP layer only needs to log with ctx.
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	f := fieldsFrom(ctx)
	if f.requestID != "" {
		r.AddAttrs(slog.String("request_id", f.requestID))
	}
	if f.userID != "" {
		r.AddAttrs(slog.String("user_id", f.userID))
	}

	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

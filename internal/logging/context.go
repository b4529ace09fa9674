package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldInvocationID identifies a single shim invocation across log lines and the journal.
	FieldInvocationID = "invocation_id"
)

type invocationKey struct{}

// WithInvocationID stores the invocation identifier on ctx.
func WithInvocationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationIDFromContext returns the invocation identifier stored on ctx.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(invocationKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ContextFields extracts structured attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if id, ok := InvocationIDFromContext(ctx); ok {
		return []slog.Attr{slog.String(FieldInvocationID, id)}
	}
	return nil
}

// WithContext returns logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

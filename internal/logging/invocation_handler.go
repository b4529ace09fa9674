package logging

import (
	"context"
	"log/slog"
)

// invocationHandler adds the invocation id carried on the record context
// unless the logger already has one bound.
type invocationHandler struct {
	next  slog.Handler
	bound bool
}

func withInvocation(next slog.Handler) slog.Handler {
	return &invocationHandler{next: next}
}

func (h *invocationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *invocationHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.bound && !recordHasAttr(record, FieldInvocationID) {
		if id, ok := InvocationIDFromContext(ctx); ok {
			record = record.Clone()
			record.AddAttrs(slog.String(FieldInvocationID, id))
		}
	}
	return h.next.Handle(ctx, record)
}

func (h *invocationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := h.bound
	for _, attr := range attrs {
		if attr.Key == FieldInvocationID {
			bound = true
			break
		}
	}
	return &invocationHandler{next: h.next.WithAttrs(attrs), bound: bound}
}

func (h *invocationHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	// Attrs added after a group would nest under it.
	return &invocationHandler{next: h.next.WithGroup(name), bound: true}
}

func recordHasAttr(record slog.Record, key string) bool {
	found := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}

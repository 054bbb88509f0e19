package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSyncID identifies a single producer sync pass.
	FieldSyncID = "sync_id"
	// FieldProducer names the producer field a sync pass owns.
	FieldProducer = "producer"
	// FieldEventType is a stable machine-readable name for the logged event.
	FieldEventType = "event_type"
)

type contextKey string

const (
	syncIDKey   contextKey = "sync_id"
	producerKey contextKey = "producer"
)

// WithSyncID returns a derived context tagged with the sync pass identifier.
func WithSyncID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, syncIDKey, id)
}

// SyncIDFromContext extracts the sync pass identifier if present.
func SyncIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(syncIDKey).(string)
	return id, ok && id != ""
}

// WithProducer returns a derived context tagged with the producer name.
func WithProducer(ctx context.Context, producer string) context.Context {
	producer = strings.TrimSpace(producer)
	if producer == "" {
		return ctx
	}
	return context.WithValue(ctx, producerKey, producer)
}

// ProducerFromContext extracts the producer name if present.
func ProducerFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	producer, ok := ctx.Value(producerKey).(string)
	return producer, ok && producer != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := SyncIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSyncID, id))
	}
	if producer, ok := ProducerFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProducer, producer))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
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

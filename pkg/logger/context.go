package logger

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	buttonKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithButton marks ctx as handling a press of the named button.
func WithButton(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, buttonKey, name)
}

func GetButton(ctx context.Context) string {
	name, _ := ctx.Value(buttonKey).(string)
	return name
}

// FromContext returns log tagged with the request id and button carried by
// ctx. Missing values are left out.
func FromContext(ctx context.Context, log *slog.Logger) *slog.Logger {
	var attrs []any
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if name := GetButton(ctx); name != "" {
		attrs = append(attrs, Button(name))
	}
	if len(attrs) == 0 {
		return log
	}
	return log.With(attrs...)
}

package logger

import (
	"log/slog"
	"time"
)

func Button(name string) slog.Attr {
	return slog.String("button", name)
}

func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// HTTPFields describes one served request. route is the gin route template,
// never the raw path, since paths carry signed tokens.
func HTTPFields(requestID, method, route, remoteIP string, statusCode int, elapsed time.Duration, requestSize, responseSize int) slog.Attr {
	return slog.Group("http",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("route", route),
		slog.String("remote_ip", remoteIP),
		slog.Int("status_code", statusCode),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.Int("request_size", requestSize),
		slog.Int("response_size", responseSize),
	)
}

// ExternalFields describes one call to the messaging or telephony API.
// detail holds the transport error or the body of a rejected call.
func ExternalFields(service, operation, method string, statusCode int, elapsed time.Duration, detail string) slog.Attr {
	attrs := []any{
		slog.String("service", service),
		slog.String("operation", operation),
		slog.String("method", method),
		slog.Int("status_code", statusCode),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if detail != "" {
		attrs = append(attrs, slog.String("error", detail))
	}
	return slog.Group("external", attrs...)
}

// RedisFields describes one room id cache operation.
func RedisFields(operation, key string, elapsed time.Duration, err error) slog.Attr {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, Err(err))
	}
	return slog.Group("redis", attrs...)
}

// Event groups the attributes of a domain event (button_pressed,
// room_created, ...) under "application".
func Event(name string, attrs ...slog.Attr) slog.Attr {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("event", name))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return slog.Group("application", args...)
}

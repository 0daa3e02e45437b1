package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type requestIDKey struct{}

// Setup builds the process logger and installs it as the slog default.
// Format "json" is meant for production; anything else uses the text handler.
func Setup(level, format string) *slog.Logger {
	return setup(os.Stderr, level, format)
}

func setup(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID stores the request ID on ctx for loggers created further down.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID returns the request ID stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides request-scoped structured logging for services
type Logger struct {
	base      *slog.Logger
	requestID string
}

// New creates a logger bound to the request ID carried by ctx
func New(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{base: slog.Default(), requestID: requestID}
}

func (l *Logger) with(operation string) *slog.Logger {
	return l.base.With("request_id", l.requestID, "operation", operation)
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error, attrs ...any) {
	l.with(operation).Error(errString(err), attrs...)
}

// LogInfo logs an info message with structured attributes
func (l *Logger) LogInfo(operation string, message string, attrs ...any) {
	l.with(operation).Info(message, attrs...)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...any) {
	l.with(operation).Info(fmt.Sprintf(format, args...))
}

// LogWarn logs a warning with structured attributes
func (l *Logger) LogWarn(operation string, message string, attrs ...any) {
	l.with(operation).Warn(message, attrs...)
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...any) {
	l.with(operation).Warn(fmt.Sprintf(format, args...))
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

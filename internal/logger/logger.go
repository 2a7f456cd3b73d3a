package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

func init() {
	defaultLogger = New(os.Getenv("ENV"), os.Stdout)
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w. JSON in production, text otherwise.
func New(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// Configure replaces the default logger once config has been loaded.
func Configure(env string) {
	defaultLogger = New(env, os.Stdout)
	slog.SetDefault(defaultLogger)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(env string, w io.Writer) {
	defaultLogger = New(env, w)
	slog.SetDefault(defaultLogger)
}

// Logger returns the default logger
func Logger() *slog.Logger {
	return defaultLogger
}

// Context keys
type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	calculationIDKey contextKey = "calculation_id"
	laneKey          contextKey = "lane"
)

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithCalculationID adds the calculation or comparison ID to context
func WithCalculationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, calculationIDKey, id)
}

// WithLane tags the context with a lane label such as "AU->SG".
func WithLane(ctx context.Context, lane string) context.Context {
	return context.WithValue(ctx, laneKey, lane)
}

// FromContext returns a logger with context values
func FromContext(ctx context.Context) *slog.Logger {
	l := defaultLogger

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		l = l.With("request_id", requestID)
	}

	if id, ok := ctx.Value(calculationIDKey).(string); ok && id != "" {
		l = l.With("calculation_id", id)
	}

	if lane, ok := ctx.Value(laneKey).(string); ok && lane != "" {
		l = l.With("lane", lane)
	}

	return l
}

// Convenience functions

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

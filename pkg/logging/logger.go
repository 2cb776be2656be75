// Package logging provides structured logging for the physics2d library and
// its command-line tools. It wraps Go's slog package with JSON output, a
// per-run identifier carried in the context, and error wrapping helpers.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

// LevelEnvVar selects the minimum log level.
const LevelEnvVar = "PHYSICS2D_LOG_LEVEL"

// Logger wraps slog.Logger with run ID support.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing JSON to stdout. The level is read from
// PHYSICS2D_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter creates a Logger writing JSON to w at the level taken
// from the environment.
func NewLoggerWithWriter(w io.Writer) *Logger {
	return NewLoggerWithLevel(w, getLogLevelFromEnv())
}

// NewLoggerWithLevel creates a Logger writing JSON to w at a fixed level.
func NewLoggerWithLevel(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

// Discard returns a Logger that drops everything. Scenes use it when the
// caller does not supply one.
func Discard() *Logger {
	return NewLoggerWithLevel(io.Discard, slog.LevelError+1)
}

// LogWithContext logs msg, adding the run ID from ctx when present.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if runID := GetRunID(ctx); runID != "" {
		args = append(args, "run_id", runID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type runIDKey struct{}

// WithRunID tags ctx with a simulation run ID, generating one if id is empty.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = GenerateRunID()
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// GetRunID returns the run ID stored in ctx, or "".
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateRunID creates a random 16 character hex ID.
func GenerateRunID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func getLogLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(LevelEnvVar)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sanitizeAttributes keeps log output valid JSON and free of credentials.
// encoding/json rejects NaN and infinities, which diverging simulations and
// infinite-mass bodies produce routinely, so those are rendered as strings.
func sanitizeAttributes(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, sensitive := range []string{"password", "token", "secret", "credential"} {
		if strings.Contains(key, sensitive) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}

	if a.Value.Kind() == slog.KindFloat64 {
		f := a.Value.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return slog.String(a.Key, fmt.Sprint(f))
		}
	}
	return a
}

// WrapError wraps err with a formatted description, or returns nil.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}

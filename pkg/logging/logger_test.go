package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("NewLogger() returned nil")
	}
	if logger.Logger == nil {
		t.Fatal("Logger.Logger is nil")
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug level", "DEBUG", slog.LevelDebug},
		{"info level", "INFO", slog.LevelInfo},
		{"warn level", "WARN", slog.LevelWarn},
		{"warning level", "WARNING", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"lowercase debug", "debug", slog.LevelDebug},
		{"invalid level", "LOUD", slog.LevelInfo},
		{"empty value", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LevelEnvVar, tt.envValue)
			if level := getLogLevelFromEnv(); level != tt.expected {
				t.Errorf("getLogLevelFromEnv() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestNewLoggerWithWriter_RespectsEnvLevel(t *testing.T) {
	t.Setenv(LevelEnvVar, "WARN")
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	logger.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("INFO message written at WARN level: %s", buf.String())
	}

	logger.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("WARN message missing: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic at any level.
	logger.Error(context.Background(), "dropped", errors.New("boom"))
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at ERROR")
	}
}

func TestRunID(t *testing.T) {
	t.Run("generate run ID", func(t *testing.T) {
		id1 := GenerateRunID()
		id2 := GenerateRunID()
		if id1 == id2 {
			t.Error("GenerateRunID() returned duplicate IDs")
		}
		if len(id1) != 16 {
			t.Errorf("GenerateRunID() returned wrong length: %d", len(id1))
		}
	})

	t.Run("context with run ID", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "orbit-1")
		if got := GetRunID(ctx); got != "orbit-1" {
			t.Errorf("GetRunID() = %q, want %q", got, "orbit-1")
		}
	})

	t.Run("context without run ID", func(t *testing.T) {
		if id := GetRunID(context.Background()); id != "" {
			t.Errorf("GetRunID() = %q, want empty string", id)
		}
	})

	t.Run("auto-generate run ID", func(t *testing.T) {
		id := GetRunID(WithRunID(context.Background(), ""))
		if len(id) != 16 {
			t.Errorf("auto-generated run ID has wrong length: %d", len(id))
		}
	})
}

func TestSanitizeAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		expected string
	}{
		{"password field", slog.String("password", "secret123"), "[REDACTED]"},
		{"token field", slog.String("auth_token", "abc"), "[REDACTED]"},
		{"normal field", slog.String("kind", "wall"), "wall"},
		{"infinite mass", slog.Float64("mass", math.Inf(1)), "+Inf"},
		{"nan velocity", slog.Float64("vx", math.NaN()), "NaN"},
		{"finite float", slog.Float64("mass", 2.5), "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeAttributes(nil, tt.attr)
			if result.Value.String() != tt.expected {
				t.Errorf("sanitizeAttributes() = %q, want %q", result.Value.String(), tt.expected)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithLevel(&buf, slog.LevelDebug)
	ctx := WithRunID(context.Background(), "run-123")

	decode := func(t *testing.T) map[string]interface{} {
		t.Helper()
		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to parse log JSON: %v", err)
		}
		return entry
	}

	t.Run("info logging", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "scene ticked", "bodies", 3)
		entry := decode(t)
		if entry["msg"] != "scene ticked" {
			t.Errorf("msg = %v", entry["msg"])
		}
		if entry["level"] != "INFO" {
			t.Errorf("level = %v", entry["level"])
		}
		if entry["run_id"] != "run-123" {
			t.Errorf("run_id = %v", entry["run_id"])
		}
		if entry["bodies"] != float64(3) {
			t.Errorf("bodies = %v", entry["bodies"])
		}
	})

	t.Run("error logging", func(t *testing.T) {
		buf.Reset()
		logger.Error(ctx, "load failed", errors.New("no such file"))
		entry := decode(t)
		if entry["level"] != "ERROR" {
			t.Errorf("level = %v", entry["level"])
		}
		if entry["error"] != "no such file" {
			t.Errorf("error = %v", entry["error"])
		}
	})

	t.Run("infinite values stay valid JSON", func(t *testing.T) {
		buf.Reset()
		logger.Debug(ctx, "body", "mass", math.Inf(1))
		entry := decode(t)
		if entry["mass"] != "+Inf" {
			t.Errorf("mass = %v", entry["mass"])
		}
	})

	t.Run("no run ID", func(t *testing.T) {
		buf.Reset()
		logger.Warn(context.Background(), "plain")
		if strings.Contains(buf.String(), "run_id") {
			t.Error("log should not contain run_id when none is set")
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if result := WrapError(nil, "context"); result != nil {
			t.Errorf("WrapError(nil) = %v, want nil", result)
		}
	})

	t.Run("wrap error with formatted context", func(t *testing.T) {
		original := errors.New("bad shape")
		wrapped := WrapError(original, "body %d", 4)
		if wrapped.Error() != "body 4: bad shape" {
			t.Errorf("WrapError() = %q", wrapped.Error())
		}
		if !errors.Is(wrapped, original) {
			t.Error("WrapError() should preserve original error")
		}
	})
}

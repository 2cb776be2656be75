package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/logging"
	"github.com/opd-ai/go-physics2d/pkg/render"
	"github.com/opd-ai/go-physics2d/pkg/scenario"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Log line is not JSON: %v\n%s", err, scanner.Text())
		}
		lines = append(lines, entry)
	}
	return lines
}

func messages(lines []map[string]any, msg string) []map[string]any {
	var out []map[string]any
	for _, l := range lines {
		if l["msg"] == msg {
			out = append(out, l)
		}
	}
	return out
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(*options) bool
		wantErr bool
	}{
		{"Defaults", nil, func(o *options) bool {
			return o.ConfigPath == "" && o.LogEvery == 60 && o.MaxMemMB == 500 && !o.List
		}, false},
		{"Template", []string{"-template", "bounce", "-steps", "10", "-dt", "0.5"}, func(o *options) bool {
			return o.Template == "bounce" && o.Steps == 10 && o.TimeStep == 0.5
		}, false},
		{"HealthAndBodies", []string{"-health-addr", ":0", "-log-bodies"}, func(o *options) bool {
			return o.HealthAddr == ":0" && o.LogBodies
		}, false},
		{"NegativeSteps", []string{"-steps", "-1"}, nil, true},
		{"UnknownFlag", []string{"-warp"}, nil, true},
		{"BadNumber", []string{"-dt", "fast"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(opts) {
				t.Errorf("Unexpected options %+v", opts)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	saved := config.DefaultConfig()
	saved.Name = "saved"
	if err := config.SaveConfig(saved, path); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		opts      options
		env       string
		wantName  string
		wantSteps int
		wantErr   bool
	}{
		{"Default", options{}, "", "default", 600, false},
		{"Template", options{Template: "gallery"}, "", "gallery", 600, false},
		{"File", options{ConfigPath: path}, "", "saved", 600, false},
		{"EnvOverride", options{}, "12", "default", 12, false},
		{"FlagBeatsEnv", options{Steps: 5}, "12", "default", 5, false},
		{"UnknownTemplate", options{Template: "nope"}, "", "", 0, true},
		{"MissingFile", options{ConfigPath: filepath.Join(t.TempDir(), "missing.json")}, "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvSteps, tt.env)
			t.Setenv(config.EnvTimeStep, "")

			cfg, err := loadScenario(&tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadScenario error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Name != tt.wantName || cfg.Steps != tt.wantSteps {
				t.Errorf("Got %q with %d steps, want %q with %d", cfg.Name, cfg.Steps, tt.wantName, tt.wantSteps)
			}
		})
	}
}

func TestListTemplates(t *testing.T) {
	var buf bytes.Buffer
	listTemplates(&buf)

	out := buf.String()
	for _, name := range config.ScenarioTemplateNames() {
		if !strings.Contains(out, name) {
			t.Errorf("Expected %q in listing:\n%s", name, out)
		}
	}
}

func TestRun_LogsStatsAndRemovals(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithLevel(&buf, slog.LevelDebug)
	ctx := logging.WithRunID(context.Background(), "run-1")

	cfg := config.GetScenarioTemplate("gallery")
	cfg.Steps = 300
	opts := &options{LogEvery: 100, LogBodies: true}

	if err := run(ctx, cfg, opts, logger); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	lines := decodeLines(t, &buf)
	if got := len(messages(lines, "Simulation stats")); got != 3 {
		t.Errorf("Expected 3 stats lines, got %d", got)
	}
	removed := messages(lines, "Body removed")
	if len(removed) != 3 {
		t.Errorf("Expected 3 projectiles removed, got %d", len(removed))
	}
	for _, l := range removed {
		if l["body"] == "" || l["run_id"] != "run-1" {
			t.Errorf("Removal line missing name or run id: %v", l)
		}
	}
	if len(messages(lines, "Contact began")) != 3 {
		t.Errorf("Expected 3 contact lines at debug level")
	}
	if len(messages(lines, "Simulation completed")) != 1 {
		t.Error("Expected a completion line")
	}
}

func TestRun_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithLevel(&buf, slog.LevelInfo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, config.DefaultConfig(), &options{}, logger); err != nil {
		t.Fatalf("Cancellation should not be an error, got %v", err)
	}
	if len(messages(decodeLines(t, &buf), "Simulation interrupted")) != 1 {
		t.Error("Expected an interruption line")
	}
}

func TestRun_InvalidScenario(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bodies[1].Mass = -1

	if err := run(context.Background(), cfg, &options{}, logging.Discard()); err == nil {
		t.Error("Expected build error")
	}
}

func TestMonitor_ConcurrentReads(t *testing.T) {
	mon := newMonitor()
	if mon.running() {
		t.Error("New monitor should not be running")
	}
	mon.start(scenario.Stats{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			mon.update(scenario.Stats{Ticks: uint64(i), Kinetic: float64(i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if mon.kinetic() < 0 || !mon.running() {
				t.Error("Unexpected monitor state")
				return
			}
		}
	}()
	wg.Wait()

	if mon.ticks() != 1000 {
		t.Errorf("Expected last update to win, got %d ticks", mon.ticks())
	}
	mon.stop()
	if mon.running() {
		t.Error("Monitor should stop")
	}
}

func TestRun_RendersFrames(t *testing.T) {
	var frames bytes.Buffer
	opts := &options{
		RenderEvery:  10,
		RenderWidth:  40,
		RenderHeight: 12,
		RenderOut:    &frames,
	}
	cfg := config.GetScenarioTemplate("bounce")
	cfg.Steps = 30

	if err := run(context.Background(), cfg, opts, logging.Discard()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	border := "+" + strings.Repeat("-", 40) + "+"
	if got := strings.Count(frames.String(), border); got != 6 {
		t.Errorf("Expected 3 frames (6 borders), got %d borders", got)
	}
	// Walls and the star are both visible in the fitted view.
	if !strings.Contains(frames.String(), "W") || !strings.Contains(frames.String(), "S") {
		t.Errorf("Expected walls and star in frame:\n%s", frames.String())
	}
}

func TestNewView_FitsScene(t *testing.T) {
	sc, err := scenario.Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	view := newView(sc, &options{RenderWidth: 20, RenderHeight: 10, RenderOut: io.Discard})
	if err := render.Frame(view, sc.Scene().Bodies()); err != nil {
		t.Fatal(err)
	}
	frame := view.String()
	if !strings.Contains(frame, "A") || !strings.Contains(frame, "B") {
		t.Errorf("Expected anchor and bob in fitted frame:\n%s", frame)
	}
}

// syncBuffer lets the health server goroutine log while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestRun_HealthServerShutsDownCleanly(t *testing.T) {
	var out syncBuffer
	logger := logging.NewLoggerWithLevel(&out, slog.LevelDebug)
	cfg := config.DefaultConfig()
	cfg.Steps = 10

	if err := run(context.Background(), cfg, &options{HealthAddr: "127.0.0.1:0", MaxMemMB: 500}, logger); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	logs := out.String()
	for _, unwanted := range []string{"Health check server shutdown failed", "Health check server failed"} {
		if strings.Contains(logs, unwanted) {
			t.Errorf("Unexpected %q in logs:\n%s", unwanted, logs)
		}
	}
	if !strings.Contains(logs, "Simulation completed") {
		t.Errorf("Expected a completion line:\n%s", logs)
	}
}

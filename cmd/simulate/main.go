// cmd/simulate/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/event"
	"github.com/opd-ai/go-physics2d/pkg/health"
	"github.com/opd-ai/go-physics2d/pkg/logging"
	"github.com/opd-ai/go-physics2d/pkg/physics"
	"github.com/opd-ai/go-physics2d/pkg/render"
	"github.com/opd-ai/go-physics2d/pkg/scenario"
	"github.com/opd-ai/go-physics2d/pkg/scene"
)

// options holds the command-line flags
type options struct {
	ConfigPath string
	Template   string
	SavePath   string
	List       bool
	Steps      int
	TimeStep   float64
	LogEvery   int
	LogBodies  bool
	HealthAddr string
	MaxMemMB   int64

	RenderEvery  int
	RenderWidth  int
	RenderHeight int
	RenderScale  float64
	RenderOut    io.Writer
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a JSON or YAML scenario file")
	fs.StringVar(&opts.Template, "template", "", "Built-in scenario template to run (see -list)")
	fs.StringVar(&opts.SavePath, "save", "", "Write the resolved scenario to this path and exit")
	fs.BoolVar(&opts.List, "list", false, "List built-in scenario templates and exit")
	fs.IntVar(&opts.Steps, "steps", 0, "Override the number of steps")
	fs.Float64Var(&opts.TimeStep, "dt", 0, "Override the time step in seconds")
	fs.IntVar(&opts.LogEvery, "log-every", 60, "Steps between stats log lines (0 disables)")
	fs.BoolVar(&opts.LogBodies, "log-bodies", false, "Include every body's state in stats log lines")
	fs.StringVar(&opts.HealthAddr, "health-addr", "", "Serve /health and /ready on this address while running")
	fs.Int64Var(&opts.MaxMemMB, "max-memory-mb", 500, "Readiness fails above this heap size")
	fs.IntVar(&opts.RenderEvery, "render-every", 0, "Steps between ASCII frames on stdout (0 disables)")
	fs.IntVar(&opts.RenderWidth, "render-width", 80, "ASCII frame width in cells")
	fs.IntVar(&opts.RenderHeight, "render-height", 24, "ASCII frame height in cells")
	fs.Float64Var(&opts.RenderScale, "render-scale", 0, "World units per cell (0 fits the initial scene)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Steps < 0 || opts.TimeStep < 0 || opts.LogEvery < 0 || opts.RenderEvery < 0 {
		return nil, fmt.Errorf("-steps, -dt, -log-every and -render-every cannot be negative")
	}
	if opts.RenderWidth <= 0 || opts.RenderHeight <= 0 || opts.RenderScale < 0 {
		return nil, fmt.Errorf("render dimensions must be positive")
	}
	opts.RenderOut = os.Stdout
	return opts, nil
}

// loadScenario resolves the configuration from a file, a template or the
// default, then applies environment and flag overrides.
func loadScenario(opts *options) (*config.SimulationConfig, error) {
	var (
		cfg *config.SimulationConfig
		err error
	)
	switch {
	case opts.Template != "":
		cfg, err = config.LoadConfigWithTemplate(opts.ConfigPath, opts.Template)
	case opts.ConfigPath != "":
		cfg, err = config.LoadConfig(opts.ConfigPath)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, logging.WrapError(err, "failed to apply environment overrides")
	}
	if opts.Steps > 0 {
		cfg.Steps = opts.Steps
	}
	if opts.TimeStep > 0 {
		cfg.TimeStep = opts.TimeStep
	}
	return cfg, nil
}

func listTemplates(w io.Writer) {
	templates := config.ListScenarioTemplates()
	for _, name := range config.ScenarioTemplateNames() {
		fmt.Fprintf(w, "%-10s %s\n", name, templates[name])
	}
}

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error(ctx, "Invalid arguments", err)
		os.Exit(2)
	}

	if opts.List {
		listTemplates(os.Stdout)
		return
	}

	cfg, err := loadScenario(opts)
	if err != nil {
		logger.Error(ctx, "Failed to load scenario", err,
			"config_path", opts.ConfigPath,
			"template", opts.Template,
		)
		os.Exit(1)
	}

	if opts.SavePath != "" {
		if err := config.SaveConfig(cfg, opts.SavePath); err != nil {
			logger.Error(ctx, "Failed to save scenario", err, "path", opts.SavePath)
			os.Exit(1)
		}
		logger.Info(ctx, "Saved scenario", "path", opts.SavePath, "bodies", len(cfg.Bodies))
		return
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

// run builds the scenario and ticks it to completion or cancellation.
// Cancellation is not an error.
func run(ctx context.Context, cfg *config.SimulationConfig, opts *options, logger *logging.Logger) error {
	bus := event.NewEventBus()
	sc, err := scenario.Build(cfg,
		scene.WithLogger(logger),
		scene.WithEventBus(bus),
		scene.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	watchEvents(ctx, bus, sc, logger)

	mon := newMonitor()
	if opts.HealthAddr != "" {
		srv := startHealthServer(ctx, opts.HealthAddr, mon, opts.MaxMemMB, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "Health check server shutdown failed", err)
			}
		}()
	}

	var view *render.TerminalRenderer
	if opts.RenderEvery > 0 {
		view = newView(sc, opts)
	}

	logger.Info(ctx, "Simulation started",
		"scenario", sc.Name,
		"bodies", sc.Scene().BodyCount(),
		"generators", sc.Scene().GeneratorCount(),
		"steps", sc.Steps,
		"time_step", sc.TimeStep,
	)

	started := time.Now()
	mon.start(sc.Stats())
	err = sc.Run(ctx, func(step int) {
		stats := sc.Stats()
		mon.update(stats)
		if opts.LogEvery > 0 && step%opts.LogEvery == 0 {
			logStats(ctx, logger, sc, stats, opts.LogBodies)
			sc.ResetContacts()
		}
		if view != nil && step%opts.RenderEvery == 0 {
			if err := render.Frame(view, sc.Scene().Bodies()); err != nil {
				logger.Warn(ctx, "Failed to render frame", "error", err.Error())
			}
		}
	})
	mon.stop()

	final := sc.Stats()
	wall := time.Since(started)
	args := []any{
		"ticks", final.Ticks,
		"elapsed", final.Elapsed,
		"bodies", final.Bodies,
		"kinetic", final.Kinetic,
		"wall_time", wall.String(),
	}
	if wall > 0 {
		args = append(args, "steps_per_second", float64(final.Ticks)/wall.Seconds())
	}

	if errors.Is(err, context.Canceled) {
		logger.Info(ctx, "Simulation interrupted", args...)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "Simulation completed", args...)
	return nil
}

// newView creates the ASCII renderer, fitting the initial scene into the
// frame unless a scale was given.
func newView(sc *scenario.Scenario, opts *options) *render.TerminalRenderer {
	scale, center := opts.RenderScale, physics.Zero
	if bodies := sc.Scene().Bodies(); scale == 0 && len(bodies) > 0 {
		bounds := bodies[0].Shape().Bounds()
		for _, b := range bodies[1:] {
			bounds = bounds.Union(b.Shape().Bounds())
		}
		size, mid := bounds.Size(), bounds.Center()
		scale = math.Max(size.X/float64(opts.RenderWidth), size.Y/float64(opts.RenderHeight)) * 1.05
		center = physics.Vector2D{X: mid.X, Y: mid.Y}
	}
	if !(scale > 0) {
		scale = 1
	}

	view := render.NewTerminalRenderer(opts.RenderOut, opts.RenderWidth, opts.RenderHeight, scale)
	view.SetCenter(center)
	return view
}

func logStats(ctx context.Context, logger *logging.Logger, sc *scenario.Scenario, stats scenario.Stats, bodies bool) {
	args := []any{
		"tick", stats.Ticks,
		"elapsed", stats.Elapsed,
		"bodies", stats.Bodies,
		"generators", stats.Generators,
		"kinetic", stats.Kinetic,
		"momentum_x", stats.Momentum.X,
		"momentum_y", stats.Momentum.Y,
		"contacts", stats.Contacts,
	}
	if bodies {
		args = append(args, "state", sc.Snapshot())
	}
	logger.Info(ctx, "Simulation stats", args...)
}

// watchEvents logs body removals and new contacts by configured name.
func watchEvents(ctx context.Context, bus *event.Bus, sc *scenario.Scenario, logger *logging.Logger) {
	bus.Subscribe(event.BodyRemoved, func(e event.Event) {
		be, ok := e.(*event.BodyEvent)
		if !ok {
			return
		}
		logger.Info(ctx, "Body removed",
			"body", sc.NameOf(be.BodyID),
			"kind", string(be.Kind),
			"tick", sc.Scene().Ticks(),
		)
	})
	bus.Subscribe(event.ContactBegan, func(e event.Event) {
		ce, ok := e.(*event.ContactEvent)
		if !ok {
			return
		}
		logger.Debug(ctx, "Contact began",
			"body_a", sc.NameOf(ce.BodyA),
			"body_b", sc.NameOf(ce.BodyB),
			"axis_x", ce.Axis.X,
			"axis_y", ce.Axis.Y,
		)
	})
}

func startHealthServer(ctx context.Context, addr string, mon *monitor, maxMemMB int64, logger *logging.Logger) *http.Server {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(mon.running))
	checker.AddCheck(health.NewProgressHealthCheck(mon.ticks, 10*time.Second))
	checker.AddCheck(health.NewFiniteStateHealthCheck("kinetic_energy", mon.kinetic))
	checker.AddCheck(health.NewMemoryHealthCheck(maxMemMB, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      checker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()
	return srv
}

package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/leandrodaf/synthsync/internal/config"
	"github.com/leandrodaf/synthsync/internal/engine"
	"github.com/leandrodaf/synthsync/internal/logger"
	"github.com/leandrodaf/synthsync/internal/preset"
	"github.com/leandrodaf/synthsync/sdk/contracts"
	"github.com/leandrodaf/synthsync/sdk/synth"
)

// session bundles what every command builds from the configuration.
type session struct {
	cfg        config.Config
	log        contracts.Logger
	engine     *engine.Engine
	controller *synth.Controller
}

func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) contracts.Logger {
	log := logger.NewZapLogger()
	log.SetLevel(cfg.Level())
	if cfg.LogFile != "" {
		log.SetDestination(contracts.FileLog, cfg.LogFile)
	}
	return log
}

func newSession(opts *RootOptions, out io.Writer) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	eng, err := engine.New(cfg.Patch)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	ctrl, err := synth.NewController(eng,
		contracts.WithControllerLogger(log),
		contracts.WithControllerLogLevel(cfg.Level()),
		contracts.WithGUI(&consoleGUI{out: out, engine: eng}),
		contracts.WithHost(&loggingHost{log: log}),
		contracts.WithUIQueueSize(cfg.UIQueueSize),
	)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, engine: eng, controller: ctrl}, nil
}

func (s *session) openStore() (*preset.Store, error) {
	store, err := preset.Open(s.cfg.PresetDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset bank %s: %w", s.cfg.PresetDB, err)
	}
	return store, nil
}

// applyValues applies name=value assignments as GUI edits, in name order.
func (s *session) applyValues(values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := strconv.ParseFloat(values[name], 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
		if err := s.controller.ValueChangedInternal(name, v); err != nil {
			return err
		}
	}
	return nil
}

// consoleGUI prints notifications. It runs on the UI pump goroutine only.
type consoleGUI struct {
	out    io.Writer
	engine *engine.Engine
}

func (g *consoleGUI) UpdateGuiControl(name string, value float64) {
	fmt.Fprintf(g.out, "%s = %.4f\n", name, value)
}

// UpdateFullGui reads the control cells directly; they are published atomically.
func (g *consoleGUI) UpdateFullGui() {
	fmt.Fprintln(g.out, "-- refresh --")
	for _, name := range g.engine.ControlNames() {
		if c, ok := g.engine.Control(name); ok {
			fmt.Fprintf(g.out, "%s = %.4f\n", name, c.Value())
		}
	}
}

type loggingHost struct {
	log contracts.Logger
}

func (h *loggingHost) SetValueNotifyHost(name string, value float64) {
	h.log.Info("host notified",
		h.log.Field().String("name", name),
		h.log.Field().Float64("value", value))
}

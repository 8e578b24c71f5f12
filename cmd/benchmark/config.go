package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/delaneyj/slotparty/pkg/signals"
	"gopkg.in/yaml.v3"
)

type scenario struct {
	Name       string `toml:"name" yaml:"name"`
	Slots      int    `toml:"slots" yaml:"slots"`           // slots connected to the signal
	Args       int    `toml:"args" yaml:"args"`             // arguments per emission
	Reemission string `toml:"reemission" yaml:"reemission"` // immediate, queued or latest-only
	Nested     int    `toml:"nested" yaml:"nested"`         // reentrant emits per emission
	Producers  int    `toml:"producers" yaml:"producers"`   // goroutines emitting to thread-affine slots
	Iterations int    `toml:"iterations" yaml:"iterations"` // emissions to time
	Priorities bool   `toml:"priorities" yaml:"priorities"` // give every slot a distinct priority
	Weak       bool   `toml:"weak" yaml:"weak"`             // connect slots through signals.Method
	Paused     bool   `toml:"paused" yaml:"paused"`         // buffer and replay with a reducer
}

type config struct {
	Iterations int        `toml:"iterations" yaml:"iterations"`
	Scenarios  []scenario `toml:"scenario" yaml:"scenarios"`
}

func defaultConfig() *config {
	return &config{
		Iterations: 10_000,
		Scenarios: []scenario{
			{Name: "single slot", Slots: 1, Args: 1},
			{Name: "fan out", Slots: 100, Args: 2},
			{Name: "truncated args", Slots: 10, Args: 4},
			{Name: "priorities", Slots: 50, Args: 1, Priorities: true},
			{Name: "weak methods", Slots: 50, Args: 1, Weak: true},
			{Name: "queued reentry", Slots: 10, Args: 1, Reemission: "queued", Nested: 5},
			{Name: "latest-only reentry", Slots: 10, Args: 1, Reemission: "latest-only", Nested: 5},
			{Name: "paused reduce", Slots: 10, Args: 1, Paused: true},
			{Name: "cross thread", Slots: 4, Args: 1, Producers: 4, Iterations: 2_000},
		},
	}
}

// loadConfig reads a TOML or YAML scenario file, picked by extension.
func loadConfig(path string) (*config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Iterations <= 0 {
		c.Iterations = defaultConfig().Iterations
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("no scenarios")
	}
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("scenario %d", i+1)
		}
		if s.Slots <= 0 {
			return fmt.Errorf("scenario %q: slots must be positive", s.Name)
		}
		if s.Args < 0 || s.Nested < 0 || s.Producers < 0 {
			return fmt.Errorf("scenario %q: negative counts", s.Name)
		}
		if s.Producers > 0 && (s.Nested > 0 || s.Paused) {
			return fmt.Errorf("scenario %q: producers cannot be combined with nested or paused", s.Name)
		}
		if s.Iterations <= 0 {
			s.Iterations = c.Iterations
		}
		if _, err := s.reemission(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return nil
}

func (s scenario) reemission() (signals.ReemissionMode, error) {
	if s.Reemission == "" {
		return signals.ReemitImmediate, nil
	}
	return signals.ParseReemission(s.Reemission)
}

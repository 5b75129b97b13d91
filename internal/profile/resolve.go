// resolve.go
package profile

import (
	"fmt"

	"github.com/xtding233/galton-board/internal/galton"
)

// Overrides carries per-request values (flags, query params) that win over
// the YAML layers.
type Overrides struct {
	Slots             *int
	Balls             *int
	Bias              *float64
	Threads           *int
	Strategy          *string
	ParallelThreshold *int
	Remainder         *string
	Style             *string
}

type Resolver interface {
	// Returns merged RawConfig and normalized Settings
	Resolve(profile string, o Overrides) (RawConfig, Settings, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → profile → overrides into engine settings.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	s, err := Resolve(raw, o)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	return raw, s, nil
}

// Resolve applies overrides to raw, clamps the board to its minimum size and
// fills every unset field with its default.
func Resolve(raw RawConfig, o Overrides) (Settings, error) {
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return Settings{}, err
	}

	cfg := galton.DefaultConfig()
	if raw.Board.Slots != nil {
		cfg.Slots = *raw.Board.Slots
	}
	if raw.Board.Balls != nil {
		cfg.Balls = *raw.Board.Balls
	}
	if raw.Board.Bias != nil {
		cfg.Bias = *raw.Board.Bias
	}
	cfg.Slots = max(cfg.Slots, MinSlots)
	cfg.Balls = max(cfg.Balls, MinBalls)

	if s := raw.Simulation; s != nil {
		if s.Threads != nil {
			cfg.Threads = *s.Threads
		}
		if s.ParallelThreshold != nil {
			cfg.ParallelThreshold = *s.ParallelThreshold
		}
		cfg.Strategy = galton.Strategy(s.Strategy)
		cfg.Remainder = galton.RemainderPolicy(s.Remainder)
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("resolve: %w", err)
	}

	rs := RenderSettings{Style: StyleVertical, Height: DefaultHeight, Width: DefaultWidth}
	if r := raw.Render; r != nil {
		if r.Style != "" {
			rs.Style = r.Style
		}
		if r.Height != nil {
			rs.Height = *r.Height
		}
		if r.Width != nil {
			rs.Width = *r.Width
		}
	}

	return Settings{Board: cfg, Render: rs, Version: raw.Version}, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	if o.Slots != nil {
		raw.Board.Slots = o.Slots
	}
	if o.Balls != nil {
		raw.Board.Balls = o.Balls
	}
	if o.Bias != nil {
		raw.Board.Bias = o.Bias
	}

	if o.Threads != nil || o.Strategy != nil || o.ParallelThreshold != nil || o.Remainder != nil {
		sim := SimulationConfig{}
		if raw.Simulation != nil {
			sim = *raw.Simulation
		}
		if o.Threads != nil {
			sim.Threads = o.Threads
		}
		if o.Strategy != nil {
			sim.Strategy = *o.Strategy
		}
		if o.ParallelThreshold != nil {
			sim.ParallelThreshold = o.ParallelThreshold
		}
		if o.Remainder != nil {
			sim.Remainder = *o.Remainder
		}
		raw.Simulation = &sim
	}

	if o.Style != nil {
		r := RenderConfig{}
		if raw.Render != nil {
			r = *raw.Render
		}
		r.Style = *o.Style
		raw.Render = &r
	}
	return raw
}

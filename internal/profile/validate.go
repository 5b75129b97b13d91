package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidConfig = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig.
// Slot and ball counts below the minimum are not errors; Resolve clamps them.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// board.bias
	if b := cfg.Board.Bias; b != nil {
		if math.IsNaN(*b) || *b < 0 || *b > 1 {
			errs = append(errs, "board.bias must be in [0,1]")
		}
	}

	// simulation
	if s := cfg.Simulation; s != nil {
		if s.Threads != nil && *s.Threads < 1 {
			errs = append(errs, "simulation.threads must be >= 1")
		}
		switch s.Strategy {
		case "", "local", "locked":
		default:
			errs = append(errs, "simulation.strategy must be one of: local, locked")
		}
		switch s.Remainder {
		case "", "drop", "assign":
		default:
			errs = append(errs, "simulation.remainder must be one of: drop, assign")
		}
		// Balls <= threshold runs serially, so 1 is the smallest meaningful value
		if s.ParallelThreshold != nil && *s.ParallelThreshold < 1 {
			errs = append(errs, "simulation.parallel_threshold must be >= 1")
		}
	}

	// render
	if r := cfg.Render; r != nil {
		switch r.Style {
		case "", StyleVertical, StyleHorizontal, StyleTable:
		default:
			errs = append(errs, "render.style must be one of: vertical, horizontal, table")
		}
		if r.Height != nil && *r.Height < 1 {
			errs = append(errs, "render.height must be >= 1")
		}
		if r.Width != nil && *r.Width < 1 {
			errs = append(errs, "render.width must be >= 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/galton
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "boards", "default.yaml")
}
func (p Paths) ProfilePath(name string) string {
	return filepath.Join(p.BaseDir, "boards", name+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name or "$default"
}

// NewLoader creates a config loader with the given base directory.
// An empty baseDir yields built-in defaults only.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files this loader reads, for watching.
func (l *Loader) Paths(profiles ...string) []string {
	if l.paths.BaseDir == "" {
		return nil
	}
	out := []string{l.paths.DefaultPath()}
	for _, p := range profiles {
		if p != "" {
			out = append(out, l.paths.ProfilePath(p))
		}
	}
	return out
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	key := profile
	if key == "" {
		key = "$default"
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	if l.paths.BaseDir == "" {
		return RawConfig{}, nil
	}

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}
	if err := ValidateRaw(merged); err != nil {
		return RawConfig{}, err
	}

	l.mu.Lock()
	l.cache["$default"] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-zero/non-nil.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// board
	if b.Board.Slots != nil {
		out.Board.Slots = b.Board.Slots
	}
	if b.Board.Balls != nil {
		out.Board.Balls = b.Board.Balls
	}
	if b.Board.Bias != nil {
		out.Board.Bias = b.Board.Bias
	}

	// simulation
	switch {
	case out.Simulation == nil && b.Simulation != nil:
		c := *b.Simulation
		out.Simulation = &c
	case out.Simulation != nil && b.Simulation != nil:
		c := *out.Simulation
		if b.Simulation.Threads != nil {
			c.Threads = b.Simulation.Threads
		}
		if b.Simulation.Strategy != "" {
			c.Strategy = b.Simulation.Strategy
		}
		if b.Simulation.ParallelThreshold != nil {
			c.ParallelThreshold = b.Simulation.ParallelThreshold
		}
		if b.Simulation.Remainder != "" {
			c.Remainder = b.Simulation.Remainder
		}
		out.Simulation = &c
	}

	// render
	switch {
	case out.Render == nil && b.Render != nil:
		c := *b.Render
		out.Render = &c
	case out.Render != nil && b.Render != nil:
		c := *out.Render
		if b.Render.Style != "" {
			c.Style = b.Render.Style
		}
		if b.Render.Height != nil {
			c.Height = b.Render.Height
		}
		if b.Render.Width != nil {
			c.Width = b.Render.Width
		}
		out.Render = &c
	}

	return out
}

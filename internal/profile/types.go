// types.go
package profile

import "github.com/xtding233/galton-board/internal/galton"

// Raw config loaded from YAML; every leaf is a pointer so an unset key
// never overrides a lower layer.
type RawConfig struct {
	Version    string            `yaml:"version"`
	Board      BoardConfig       `yaml:"board"`
	Simulation *SimulationConfig `yaml:"simulation,omitempty"`
	Render     *RenderConfig     `yaml:"render,omitempty"`
	Notes      string            `yaml:"notes,omitempty"`
}

type BoardConfig struct {
	Slots *int     `yaml:"slots"`
	Balls *int     `yaml:"balls"`
	Bias  *float64 `yaml:"bias"`
}

type SimulationConfig struct {
	Threads           *int   `yaml:"threads,omitempty"`
	Strategy          string `yaml:"strategy,omitempty"`  // "local" | "locked"
	ParallelThreshold *int   `yaml:"parallel_threshold,omitempty"`
	Remainder         string `yaml:"remainder,omitempty"` // "drop" | "assign"
}

type RenderConfig struct {
	Style  string `yaml:"style,omitempty"` // "vertical" | "horizontal" | "table"
	Height *int   `yaml:"height,omitempty"`
	Width  *int   `yaml:"width,omitempty"`
}

// Render styles understood by internal/render.
const (
	StyleVertical   = "vertical"
	StyleHorizontal = "horizontal"
	StyleTable      = "table"
)

const (
	// Smallest board a caller may ask for; smaller requests are clamped.
	MinSlots = 3
	MinBalls = 1

	DefaultHeight = 20
	DefaultWidth  = 50
)

// RenderSettings are the normalized chart options.
type RenderSettings struct {
	Style  string
	Height int
	Width  int
}

// Settings is a fully resolved profile: engine config plus chart options.
type Settings struct {
	Board   galton.Config
	Render  RenderSettings
	Version string // effective config version for tracing
}

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/galton-board/internal/galton"
)

func ptr[T any](v T) *T { return &v }

func TestResolveDefaults(t *testing.T) {
	s, err := Resolve(RawConfig{}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, galton.DefaultConfig(), s.Board)
	assert.Equal(t, RenderSettings{Style: StyleVertical, Height: DefaultHeight, Width: DefaultWidth}, s.Render)
}

func TestResolveClampsBoard(t *testing.T) {
	s, err := Resolve(RawConfig{}, Overrides{Slots: ptr(1), Balls: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, MinSlots, s.Board.Slots)
	assert.Equal(t, MinBalls, s.Board.Balls)
}

func TestResolveOverridesWin(t *testing.T) {
	raw := RawConfig{
		Version: "3",
		Board:   BoardConfig{Slots: ptr(9), Balls: ptr(500), Bias: ptr(0.2)},
		Simulation: &SimulationConfig{
			Threads:  ptr(4),
			Strategy: "local",
		},
	}
	s, err := Resolve(raw, Overrides{
		Balls:     ptr(5000),
		Strategy:  ptr("locked"),
		Remainder: ptr("assign"),
		Style:     ptr(StyleTable),
	})
	require.NoError(t, err)
	assert.Equal(t, galton.Config{
		Slots:     9,
		Balls:     5000,
		Bias:      0.2,
		Threads:   4,
		Strategy:  galton.StrategyLocked,
		Remainder: galton.RemainderAssign,
	}, s.Board)
	assert.Equal(t, StyleTable, s.Render.Style)
	assert.Equal(t, "3", s.Version)

	// the caller's raw config is untouched
	assert.Equal(t, "local", raw.Simulation.Strategy)
}

func TestResolveRejects(t *testing.T) {
	_, err := Resolve(RawConfig{}, Overrides{Bias: ptr(-0.5)})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve(RawConfig{}, Overrides{Threads: ptr(0)})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve(RawConfig{}, Overrides{Style: ptr("pie")})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolveRejectsZeroThreshold(t *testing.T) {
	_, err := Resolve(RawConfig{}, Overrides{ParallelThreshold: ptr(0)})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "simulation.parallel_threshold must be >= 1")

	s, err := Resolve(RawConfig{}, Overrides{ParallelThreshold: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Board.ParallelThreshold)
}

func TestLoaderResolve(t *testing.T) {
	l := NewLoader(t.TempDir())
	writeFile(t, l.paths.DefaultPath(), defaultYAML)

	raw, s, err := l.Resolve("", Overrides{Threads: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, 1024, *raw.Simulation.Threads)
	assert.Equal(t, 2, s.Board.Threads)
	assert.Equal(t, 15, s.Board.Slots)
}

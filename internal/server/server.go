// Package server exposes the simulator over HTTP and gRPC.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xtding233/galton-board/internal/galton"
	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/profile"
)

const (
	// DefaultMaxBalls caps a single request's ball count.
	DefaultMaxBalls = 100_000_000
	// DefaultMaxSlots caps a single request's board width; every worker
	// allocates a vector of this many counters.
	DefaultMaxSlots = 10_000
)

var (
	ErrTooManyBalls = errors.New("too many balls requested")
	ErrTooManySlots = errors.New("too many slots requested")
)

// Options configures a Server.
type Options struct {
	// MaxBalls rejects larger requests; 0 means DefaultMaxBalls.
	MaxBalls int
	// MaxSlots rejects wider boards; 0 means DefaultMaxSlots.
	MaxSlots int
	// History stores every run when set.
	History *history.Store
}

// Server runs simulations on behalf of HTTP and gRPC clients.
// Each run already fans out over every core, so runs are served one at a time.
type Server struct {
	resolver profile.Resolver
	history  *history.Store
	maxBalls int
	maxSlots int
	slot     chan struct{}
}

func New(resolver profile.Resolver, opts Options) *Server {
	maxBalls := opts.MaxBalls
	if maxBalls <= 0 {
		maxBalls = DefaultMaxBalls
	}
	maxSlots := opts.MaxSlots
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Server{
		resolver: resolver,
		history:  opts.History,
		maxBalls: maxBalls,
		maxSlots: maxSlots,
		slot:     make(chan struct{}, 1),
	}
}

// outcome is one served run.
type outcome struct {
	settings profile.Settings
	result   galton.Result
	record   history.Record
	stats    galton.Stats
}

// simulate resolves the request, waits its turn and runs the board.
func (s *Server) simulate(ctx context.Context, name string, o profile.Overrides) (outcome, error) {
	_, settings, err := s.resolver.Resolve(name, o)
	if err != nil {
		return outcome{}, err
	}
	if settings.Board.Slots > s.maxSlots {
		return outcome{}, fmt.Errorf("%w: %d > %d", ErrTooManySlots, settings.Board.Slots, s.maxSlots)
	}
	if settings.Board.Balls > s.maxBalls {
		return outcome{}, fmt.Errorf("%w: %d > %d", ErrTooManyBalls, settings.Board.Balls, s.maxBalls)
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
	res, err := galton.Run(settings.Board)
	<-s.slot
	if err != nil {
		return outcome{}, err
	}

	rec := history.NewRecord(settings.Board, res)
	if s.history != nil {
		if err := s.history.Save(ctx, rec); err != nil {
			log.Printf("[History] Failed to save run %s: %v", rec.ID, err)
		}
	}
	log.Printf("[Server] Run %s: slots=%d balls=%d workers=%d elapsed=%s",
		rec.ID, settings.Board.Slots, rec.Balls, res.Plan.Workers, res.Elapsed)

	return outcome{
		settings: settings,
		result:   res,
		record:   rec,
		stats:    galton.Summarize(res.Counts, settings.Board.Bias),
	}, nil
}

// isBadRequest reports errors caused by the caller's parameters.
func isBadRequest(err error) bool {
	return errors.Is(err, profile.ErrInvalidConfig) ||
		errors.Is(err, galton.ErrInvalidBias) ||
		errors.Is(err, galton.ErrUnknownStrategy) ||
		errors.Is(err, galton.ErrUnknownRemainder) ||
		errors.Is(err, ErrTooManyBalls) ||
		errors.Is(err, ErrTooManySlots)
}

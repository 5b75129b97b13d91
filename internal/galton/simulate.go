package galton

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	ErrUnknownStrategy  = errors.New("unknown accumulation strategy")
	ErrUnknownRemainder = errors.New("unknown remainder policy")
)

// availableParallelism is swapped in tests to pin the hardware query.
var availableParallelism = func() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// PlanWork resolves the worker count and each worker's share.
// - Workers = min(thread budget, available parallelism), at least 1.
// - Balls <= ParallelThreshold always runs on a single worker.
// - Under RemainderDrop the Balls % Workers leftover is not simulated.
func PlanWork(cfg Config) WorkPlan {
	if cfg.Balls < 1 {
		return WorkPlan{Workers: 1}
	}
	workers := 1
	if cfg.Balls > cfg.parallelThreshold() {
		workers = min(cfg.threadBudget(), availableParallelism())
		if workers < 1 {
			workers = 1
		}
	}
	plan := WorkPlan{
		Workers:   workers,
		PerWorker: cfg.Balls / workers,
		Remainder: cfg.Balls % workers,
	}
	plan.Effective = plan.Workers * plan.PerWorker
	if cfg.remainder() == RemainderAssign {
		plan.Effective = cfg.Balls
	}
	return plan
}

// share is how many balls worker w drops. Worker 0 is the calling goroutine
// and takes the remainder when it is assigned.
func (p WorkPlan) share(w int, policy RemainderPolicy) int {
	if w == 0 && policy == RemainderAssign {
		return p.PerWorker + p.Remainder
	}
	return p.PerWorker
}

// Simulate runs cfg and returns only the merged counts.
func Simulate(cfg Config) (SlotCounts, error) {
	res, err := Run(cfg)
	if err != nil {
		return nil, err
	}
	return res.Counts, nil
}

// Run drops cfg.Balls balls across a fresh set of workers and blocks until
// every worker has joined. Partial results are never returned.
func Run(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("simulate: %w", err)
	}
	slots := cfg.Slots
	if slots < 0 {
		slots = 0
	}
	plan := PlanWork(cfg)
	if slots == 0 {
		// nowhere to land
		plan.Effective = 0
		return Result{Counts: SlotCounts{}, Plan: plan}, nil
	}

	sources := make([]*ChoiceSource, plan.Workers)
	for w := range sources {
		src, err := NewChoiceSource(cfg.Bias, NewWorkerRNG(w))
		if err != nil {
			return Result{}, fmt.Errorf("simulate: %w", err)
		}
		sources[w] = src
	}

	start := time.Now()
	var counts SlotCounts
	switch cfg.strategy() {
	case StrategyLocked:
		counts = runLocked(slots, plan, cfg.remainder(), sources)
	default:
		counts = runLocal(slots, plan, cfg.remainder(), sources)
	}
	return Result{Counts: counts, Plan: plan, Elapsed: time.Since(start)}, nil
}

func runLocal(slots int, plan WorkPlan, policy RemainderPolicy, sources []*ChoiceSource) SlotCounts {
	locals := make([]SlotCounts, plan.Workers)
	work := func(w int) {
		local := make(SlotCounts, slots)
		for range plan.share(w, policy) {
			local[DropBall(slots, sources[w])]++
		}
		locals[w] = local
	}

	var wg sync.WaitGroup
	for w := 1; w < plan.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(w)
		}()
	}
	work(0)
	wg.Wait()

	// single-threaded merge after the join, no lock needed
	merged := make(SlotCounts, slots)
	for _, local := range locals {
		for i, v := range local {
			merged[i] += v
		}
	}
	return merged
}

func runLocked(slots int, plan WorkPlan, policy RemainderPolicy, sources []*ChoiceSource) SlotCounts {
	shared := make(SlotCounts, slots)
	var mu sync.Mutex
	work := func(w int) {
		for range plan.share(w, policy) {
			pos := DropBall(slots, sources[w])
			mu.Lock()
			shared[pos]++
			mu.Unlock()
		}
	}

	var wg sync.WaitGroup
	for w := 1; w < plan.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(w)
		}()
	}
	work(0)
	wg.Wait()
	return shared
}

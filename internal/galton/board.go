package galton

import "time"

// Strategy selects how workers accumulate slot counts.
type Strategy string

const (
	// Each worker fills a private vector; vectors are summed after the join.
	StrategyLocal Strategy = "local"
	// All workers increment one shared vector under a mutex, one lock per ball.
	// Kept as the contention-heavy baseline.
	StrategyLocked Strategy = "locked"
)

// RemainderPolicy decides what happens to Balls % Workers.
type RemainderPolicy string

const (
	// Leftover balls are not simulated; Effective < Balls.
	RemainderDrop RemainderPolicy = "drop"
	// The calling worker simulates the leftover balls; Effective == Balls.
	RemainderAssign RemainderPolicy = "assign"
)

const (
	DefaultSlots             = 15
	DefaultBalls             = 100
	DefaultThreadBudget      = 1024
	DefaultParallelThreshold = 1000
)

// Config describes one simulation run. It is read-only once Run starts.
type Config struct {
	Slots int     // landing positions; Slots-1 peg rows
	Balls int     // requested trials
	Bias  float64 // probability of deflecting right at each peg

	Threads           int             // upper bound on workers; 0 => DefaultThreadBudget
	Strategy          Strategy        // "" => StrategyLocal
	ParallelThreshold int             // Balls <= threshold runs on one worker; unset (0) => DefaultParallelThreshold
	Remainder         RemainderPolicy // "" => RemainderDrop
}

// DefaultConfig mirrors the board the CLI uses when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Slots:   DefaultSlots,
		Balls:   DefaultBalls,
		Bias:    DefaultBias,
		Threads: DefaultThreadBudget,
	}
}

func (c Config) threadBudget() int {
	if c.Threads <= 0 {
		return DefaultThreadBudget
	}
	return c.Threads
}

func (c Config) parallelThreshold() int {
	if c.ParallelThreshold <= 0 {
		return DefaultParallelThreshold
	}
	return c.ParallelThreshold
}

func (c Config) strategy() Strategy {
	if c.Strategy == "" {
		return StrategyLocal
	}
	return c.Strategy
}

func (c Config) remainder() RemainderPolicy {
	if c.Remainder == "" {
		return RemainderDrop
	}
	return c.Remainder
}

// Validate reports settings Run would reject. Slot and ball counts below one
// are tolerated by Run and therefore not errors here.
func (c Config) Validate() error {
	if err := validateProb(c.Bias); err != nil {
		return err
	}
	switch c.strategy() {
	case StrategyLocal, StrategyLocked:
	default:
		return ErrUnknownStrategy
	}
	switch c.remainder() {
	case RemainderDrop, RemainderAssign:
	default:
		return ErrUnknownRemainder
	}
	return nil
}

// SlotCounts holds balls per slot, index 0 is the leftmost slot.
type SlotCounts []uint64

// Total is the number of balls that landed.
func (s SlotCounts) Total() uint64 {
	var t uint64
	for _, v := range s {
		t += v
	}
	return t
}

// Max is the fullest slot's count, 0 for an empty run.
func (s SlotCounts) Max() uint64 {
	var m uint64
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean is the average slot index, 0 for an empty run.
func (s SlotCounts) Mean() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	var acc float64
	for i, v := range s {
		acc += float64(i) * float64(v)
	}
	return acc / float64(total)
}

// WorkPlan is how a run's balls are split across workers.
type WorkPlan struct {
	Workers   int
	PerWorker int // floor(Balls / Workers)
	Remainder int // Balls % Workers
	Effective int // balls actually simulated
}

// Result is what Run hands back; the engine keeps no reference to Counts.
type Result struct {
	Counts  SlotCounts
	Plan    WorkPlan
	Elapsed time.Duration
}

// Dropped is the number of requested balls that were not simulated.
func (r Result) Dropped(requested int) int {
	if requested <= r.Plan.Effective {
		return 0
	}
	return requested - r.Plan.Effective
}

// DropBall walks one ball from slot 0 across slots-1 peg rows.
// The ball only ever moves right or stays, and never passes the last slot.
func DropBall(slots int, src *ChoiceSource) int {
	position := 0
	for row := 0; row < slots-1; row++ {
		if src.Next() && position < slots-1 {
			position++
		}
	}
	return position
}

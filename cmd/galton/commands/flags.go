package commands

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/printer"
	"github.com/xtding233/galton-board/internal/profile"
)

// boardFlags are the board overrides shared by run and interactive.
type boardFlags struct {
	slots     int
	balls     int
	bias      float64
	threads   int
	threshold int
	strategy  string
	remainder string
	style     string
}

func (f *boardFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.slots, "slots", 0, "number of slots (minimum 3)")
	fs.IntVar(&f.balls, "balls", 0, "number of balls to drop (minimum 1)")
	fs.Float64Var(&f.bias, "bias", 0.5, "probability of deflecting right at each peg, 0..1")
	fs.IntVar(&f.threads, "threads", 0, "maximum number of workers")
	fs.IntVar(&f.threshold, "threshold", 0, "ball counts at or below this run on one worker")
	fs.StringVar(&f.strategy, "strategy", "", "count accumulation: local or locked")
	fs.StringVar(&f.remainder, "remainder", "", "balls left over after splitting: drop or assign")
	fs.StringVar(&f.style, "style", "", "chart style: vertical, horizontal or table")
}

// overrides returns only the flags the user actually set, so unset flags
// never mask profile values.
func (f *boardFlags) overrides(cmd *cobra.Command) profile.Overrides {
	var o profile.Overrides
	fs := cmd.Flags()
	if fs.Changed("slots") {
		o.Slots = &f.slots
	}
	if fs.Changed("balls") {
		o.Balls = &f.balls
	}
	if fs.Changed("bias") {
		o.Bias = &f.bias
	}
	if fs.Changed("threads") {
		o.Threads = &f.threads
	}
	if fs.Changed("threshold") {
		o.ParallelThreshold = &f.threshold
	}
	if fs.Changed("strategy") {
		o.Strategy = &f.strategy
	}
	if fs.Changed("remainder") {
		o.Remainder = &f.remainder
	}
	if fs.Changed("style") {
		o.Style = &f.style
	}
	return o
}

// storeFlags select an optional Redis run history.
type storeFlags struct {
	addr      string
	namespace string
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.addr, "redis", os.Getenv("GALTON_REDIS_ADDR"), "Redis address for run history, e.g. localhost:6379")
	fs.StringVar(&f.namespace, "namespace", "default", "history namespace")
}

// open returns nil when no Redis address was given.
func (f *storeFlags) open(p *printer.Printer) (*history.Store, error) {
	if f.addr == "" {
		return nil, nil
	}
	s, err := history.NewStore(&redis.Options{Addr: f.addr}, f.namespace, 0)
	if err != nil {
		return nil, p.Error("Cannot open run history", err.Error(), nil)
	}
	return s, nil
}

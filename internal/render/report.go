package render

import (
	"fmt"
	"time"

	"github.com/xtding233/galton-board/internal/galton"
)

// Stopwatch measures wall-clock time between restarts.
type Stopwatch struct {
	last time.Time
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{last: time.Now()}
}

// Restart returns the time since the previous restart and starts over.
func (s *Stopwatch) Restart() time.Duration {
	now := time.Now()
	d := now.Sub(s.last)
	s.last = now
	return d
}

// Report is the timing line printed after a run.
type Report struct {
	Requested int // balls asked for
	Balls     int // balls actually simulated
	Workers   int
	Elapsed   time.Duration
}

// NewReport builds a report for res, where requested is the configured ball count.
func NewReport(res galton.Result, requested int) Report {
	return Report{
		Requested: requested,
		Balls:     int(res.Counts.Total()),
		Workers:   res.Plan.Workers,
		Elapsed:   res.Elapsed,
	}
}

// PerBall is the average wall time spent on each simulated ball.
func (r Report) PerBall() time.Duration {
	if r.Balls <= 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Balls)
}

func (r Report) String() string {
	var perBallMs float64
	if r.Balls > 0 {
		perBallMs = r.Elapsed.Seconds() / float64(r.Balls) * 1000
	}
	return fmt.Sprintf("Operation took %g seconds, %g milliseconds per ball with %d balls on %d workers",
		r.Elapsed.Seconds(), perBallMs, r.Balls, r.Workers)
}

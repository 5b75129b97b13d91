package galton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chi-squared critical value, 10 degrees of freedom, alpha = 0.0001
const chiCritical10 = 35.56

// pinParallelism fakes the hardware query for the duration of a test.
func pinParallelism(t *testing.T, n int) {
	t.Helper()
	prev := availableParallelism
	availableParallelism = func() int { return n }
	t.Cleanup(func() { availableParallelism = prev })
}

func TestDropBall(t *testing.T) {
	t.Run("single slot has no rows", func(t *testing.T) {
		src, err := NewChoiceSource(1, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, DropBall(1, src))
	})

	t.Run("always right ends in last slot", func(t *testing.T) {
		src, err := NewChoiceSource(1, nil)
		require.NoError(t, err)
		assert.Equal(t, 9, DropBall(10, src))
	})

	t.Run("always left stays in slot zero", func(t *testing.T) {
		src, err := NewChoiceSource(0, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, DropBall(10, src))
	})

	t.Run("stays in range", func(t *testing.T) {
		src, err := NewChoiceSource(0.5, NewSeededRNG(11))
		require.NoError(t, err)
		for i := 0; i < 10000; i++ {
			pos := DropBall(7, src)
			require.GreaterOrEqual(t, pos, 0)
			require.Less(t, pos, 7)
		}
	})
}

func TestPlanWork(t *testing.T) {
	pinParallelism(t, 8)

	t.Run("small workload runs on one worker", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 1000, Threads: 64})
		assert.Equal(t, 1, plan.Workers)
		assert.Equal(t, 1000, plan.Effective)
	})

	t.Run("budget caps workers", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 100000, Threads: 3})
		assert.Equal(t, 3, plan.Workers)
	})

	t.Run("hardware caps workers", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 100000, Threads: 64})
		assert.Equal(t, 8, plan.Workers)
	})

	t.Run("zero budget uses default cap", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 100000})
		assert.Equal(t, 8, plan.Workers)
	})

	t.Run("remainder dropped", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 1000001, Threads: 8})
		assert.Equal(t, 125000, plan.PerWorker)
		assert.Equal(t, 1, plan.Remainder)
		assert.Equal(t, 1000000, plan.Effective)
	})

	t.Run("remainder assigned", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 1000001, Threads: 8, Remainder: RemainderAssign})
		assert.Equal(t, 1000001, plan.Effective)
		assert.Equal(t, 125001, plan.share(0, RemainderAssign))
		assert.Equal(t, 125000, plan.share(1, RemainderAssign))
	})

	t.Run("custom threshold", func(t *testing.T) {
		plan := PlanWork(Config{Slots: 11, Balls: 5000, Threads: 8, ParallelThreshold: 10000})
		assert.Equal(t, 1, plan.Workers)
	})
}

func TestRunConservation(t *testing.T) {
	pinParallelism(t, 8)

	for _, strategy := range []Strategy{StrategyLocal, StrategyLocked} {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := Config{Slots: 9, Balls: 10007, Bias: 0.5, Threads: 8, Strategy: strategy}
			res, err := Run(cfg)
			require.NoError(t, err)
			require.Len(t, res.Counts, 9)
			assert.Equal(t, 8, res.Plan.Workers)
			assert.Equal(t, uint64(8*(10007/8)), res.Counts.Total())
			assert.Equal(t, 7, res.Dropped(cfg.Balls))

			cfg.Remainder = RemainderAssign
			res, err = Run(cfg)
			require.NoError(t, err)
			assert.Equal(t, uint64(10007), res.Counts.Total())
			assert.Equal(t, 0, res.Dropped(cfg.Balls))
		})
	}
}

func TestRunExtremeBias(t *testing.T) {
	pinParallelism(t, 4)

	t.Run("bias 0 lands in slot 0", func(t *testing.T) {
		counts, err := Simulate(Config{Slots: 6, Balls: 4000, Bias: 0, Threads: 4})
		require.NoError(t, err)
		assert.Equal(t, SlotCounts{4000, 0, 0, 0, 0, 0}, counts)
	})

	t.Run("bias 1 lands in last slot", func(t *testing.T) {
		counts, err := Simulate(Config{Slots: 6, Balls: 4000, Bias: 1, Threads: 4, Strategy: StrategyLocked})
		require.NoError(t, err)
		assert.Equal(t, SlotCounts{0, 0, 0, 0, 0, 4000}, counts)
	})
}

func TestRunSingleSlot(t *testing.T) {
	pinParallelism(t, 2)
	for _, bias := range []float64{0, 0.5, 1} {
		counts, err := Simulate(Config{Slots: 1, Balls: 3000, Bias: bias, Threads: 2})
		require.NoError(t, err)
		assert.Equal(t, SlotCounts{3000}, counts)
	}
}

func TestRunDegenerateInputs(t *testing.T) {
	t.Run("no slots", func(t *testing.T) {
		res, err := Run(Config{Slots: 0, Balls: 10, Bias: 0.5})
		require.NoError(t, err)
		assert.Empty(t, res.Counts)
		assert.Zero(t, res.Plan.Effective)
	})

	t.Run("no balls", func(t *testing.T) {
		counts, err := Simulate(Config{Slots: 5, Balls: 0, Bias: 0.5})
		require.NoError(t, err)
		assert.Equal(t, SlotCounts{0, 0, 0, 0, 0}, counts)
	})

	t.Run("bad bias", func(t *testing.T) {
		_, err := Run(Config{Slots: 5, Balls: 10, Bias: 2})
		require.ErrorIs(t, err, ErrInvalidBias)
	})

	t.Run("bad strategy", func(t *testing.T) {
		_, err := Run(Config{Slots: 5, Balls: 10, Bias: 0.5, Strategy: "atomic"})
		require.ErrorIs(t, err, ErrUnknownStrategy)
	})
}

func TestRunBinomialShape(t *testing.T) {
	if testing.Short() {
		t.Skip("million-ball run")
	}
	res, err := Run(Config{Slots: 11, Balls: 1000000, Bias: 0.5, Threads: 8})
	require.NoError(t, err)

	st := Summarize(res.Counts, 0.5)
	assert.InDelta(t, 5.0, st.Mean, 0.05)
	assert.Equal(t, 10, st.DegreesOfFreedom)
	assert.Less(t, st.ChiSquared, chiCritical10)
}

func TestRunWorkerCountInvariance(t *testing.T) {
	pinParallelism(t, 8)
	const balls = 200000

	single, err := Run(Config{Slots: 11, Balls: balls, Bias: 0.5, Threads: 1})
	require.NoError(t, err)
	multi, err := Run(Config{Slots: 11, Balls: balls, Bias: 0.5, Threads: 8})
	require.NoError(t, err)

	assert.Equal(t, 1, single.Plan.Workers)
	assert.Equal(t, 8, multi.Plan.Workers)
	assert.Equal(t, single.Counts.Total(), multi.Counts.Total())

	a := Summarize(single.Counts, 0.5)
	b := Summarize(multi.Counts, 0.5)
	assert.InDelta(t, a.Mean, b.Mean, 0.05)
	assert.InDelta(t, a.StdDev, b.StdDev, 0.05)
	assert.Less(t, a.ChiSquared, chiCritical10)
	assert.Less(t, b.ChiSquared, chiCritical10)
}

func BenchmarkRun(b *testing.B) {
	for _, strategy := range []Strategy{StrategyLocal, StrategyLocked} {
		b.Run(string(strategy), func(b *testing.B) {
			cfg := Config{Slots: 15, Balls: 100000, Bias: 0.5, Strategy: strategy}
			for i := 0; i < b.N; i++ {
				if _, err := Run(cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

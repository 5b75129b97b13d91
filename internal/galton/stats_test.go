package galton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinomialPMF(t *testing.T) {
	assert.InDelta(t, 252.0/1024.0, BinomialPMF(10, 5, 0.5), 1e-12)
	assert.InDelta(t, 1.0/1024.0, BinomialPMF(10, 0, 0.5), 1e-12)
	assert.Equal(t, 1.0, BinomialPMF(4, 0, 0))
	assert.Equal(t, 0.0, BinomialPMF(4, 1, 0))
	assert.Equal(t, 1.0, BinomialPMF(4, 4, 1))
	assert.Equal(t, 0.0, BinomialPMF(4, 5, 0.5))

	var sum float64
	for k := 0; k <= 14; k++ {
		sum += BinomialPMF(14, k, 0.3)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSummarize(t *testing.T) {
	t.Run("empty run", func(t *testing.T) {
		assert.Equal(t, Stats{}, Summarize(SlotCounts{0, 0, 0}, 0.5))
	})

	t.Run("moments and percentiles", func(t *testing.T) {
		st := Summarize(SlotCounts{1, 2, 1}, 0.5)
		assert.Equal(t, uint64(4), st.Total)
		assert.InDelta(t, 1.0, st.Mean, 1e-12)
		assert.InDelta(t, 0.5, st.Var, 1e-12)
		assert.InDelta(t, math.Sqrt(0.5), st.StdDev, 1e-12)
		assert.InDelta(t, 1.0, st.P50, 1e-12)
		assert.InDelta(t, 1.97, st.P99, 1e-9)
	})

	t.Run("exact binomial fits", func(t *testing.T) {
		counts := SlotCounts{1, 10, 45, 120, 210, 252, 210, 120, 45, 10, 1}
		st := Summarize(counts, 0.5)
		assert.InDelta(t, 5.0, st.Mean, 1e-12)
		assert.InDelta(t, 2.5, st.Var, 1e-12)
		assert.InDelta(t, 0.0, st.ChiSquared, 1e-9)
		// slots 0 and 10 (expected ~1 each) pool into their neighbours
		assert.Equal(t, 8, st.DegreesOfFreedom)
	})

	t.Run("skewed counts do not fit", func(t *testing.T) {
		counts := SlotCounts{500, 0, 0, 0, 500}
		st := Summarize(counts, 0.5)
		assert.Greater(t, st.ChiSquared, 100.0)
	})
}

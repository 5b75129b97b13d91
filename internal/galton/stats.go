package galton

import "math"

// Stats summarizes where the balls of one run landed.
type Stats struct {
	Total  uint64  `json:"total"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`

	// Pearson goodness of fit against Binomial(slots-1, bias).
	ChiSquared       float64 `json:"chi_squared"`
	DegreesOfFreedom int     `json:"dof"`
}

// minExpected is the smallest expected count a chi-squared bin may hold;
// sparse tail bins are pooled into their neighbours until they reach it.
const minExpected = 5.0

// Summarize computes moments, slot-index percentiles and the fit against the
// binomial shape the board should produce.
func Summarize(counts SlotCounts, bias float64) Stats {
	total := counts.Total()
	if total == 0 {
		return Stats{}
	}
	n := float64(total)

	mean := counts.Mean()

	// variance (population)
	var acc float64
	for i, v := range counts {
		d := float64(i) - mean
		acc += d * d * float64(v)
	}
	variance := acc / n

	// percentiles over the sorted sample; counts are already in slot order
	percentile := func(p float64) float64 {
		if total == 1 || p <= 0 {
			return float64(slotAtRank(counts, 0))
		}
		if p >= 1 {
			return float64(slotAtRank(counts, total-1))
		}
		pos := p * float64(total-1)
		i := uint64(math.Floor(pos))
		f := pos - float64(i)
		lo := float64(slotAtRank(counts, i))
		if i+1 >= total {
			return lo
		}
		hi := float64(slotAtRank(counts, i+1))
		return lo*(1-f) + hi*f
	}

	chi, dof := chiSquared(counts, bias)
	return Stats{
		Total:            total,
		Mean:             mean,
		Var:              variance,
		StdDev:           math.Sqrt(variance),
		P50:              percentile(0.50),
		P90:              percentile(0.90),
		P99:              percentile(0.99),
		ChiSquared:       chi,
		DegreesOfFreedom: dof,
	}
}

// slotAtRank returns the slot holding the rank-th ball (0-based) in slot order.
func slotAtRank(counts SlotCounts, rank uint64) int {
	var seen uint64
	for i, v := range counts {
		seen += v
		if rank < seen {
			return i
		}
	}
	return len(counts) - 1
}

// BinomialPMF is P(X = k) for X ~ Binomial(n, p).
func BinomialPMF(n, k int, p float64) float64 {
	if k < 0 || k > n {
		return 0
	}
	switch {
	case p <= 0:
		if k == 0 {
			return 1
		}
		return 0
	case p >= 1:
		if k == n {
			return 1
		}
		return 0
	}
	ln, _ := math.Lgamma(float64(n + 1))
	lk, _ := math.Lgamma(float64(k + 1))
	lnk, _ := math.Lgamma(float64(n - k + 1))
	logC := ln - lk - lnk
	return math.Exp(logC + float64(k)*math.Log(p) + float64(n-k)*math.Log1p(-p))
}

func chiSquared(counts SlotCounts, bias float64) (float64, int) {
	rows := len(counts) - 1
	if rows < 1 {
		return 0, 0
	}
	n := float64(counts.Total())

	type bin struct{ obs, exp float64 }
	var bins []bin
	var cur bin
	for i, v := range counts {
		cur.obs += float64(v)
		cur.exp += n * BinomialPMF(rows, i, bias)
		if cur.exp >= minExpected {
			bins = append(bins, cur)
			cur = bin{}
		}
	}
	if cur.obs > 0 || cur.exp > 0 {
		if len(bins) == 0 {
			bins = append(bins, cur)
		} else {
			bins[len(bins)-1].obs += cur.obs
			bins[len(bins)-1].exp += cur.exp
		}
	}
	if len(bins) < 2 {
		return 0, 0
	}

	var chi float64
	for _, b := range bins {
		if b.exp == 0 {
			continue
		}
		d := b.obs - b.exp
		chi += d * d / b.exp
	}
	return chi, len(bins) - 1
}

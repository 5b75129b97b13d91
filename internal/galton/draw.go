package galton

import "errors"

var ErrInvalidBias = errors.New("invalid bias; must be 0..1")

// DefaultBias is an unbiased board.
const DefaultBias = 0.5

// bernoulli: p <= 0 never hits, p >= 1 always hits, otherwise rng.Float64() < p.
func bernoulli(p float64, rng RandomSource) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

type bitSource interface {
	Uint64() uint64
}

// ChoiceSource yields one peg decision per call. Not safe for concurrent use;
// every worker builds its own.
type ChoiceSource struct {
	bias float64
	rng  RandomSource

	// fair-coin fast path: 64 decisions per Uint64
	bits  bitSource
	word  uint64
	avail int
}

// NewChoiceSource checks bias once so Next can stay on the hot path without errors.
func NewChoiceSource(bias float64, rng RandomSource) (*ChoiceSource, error) {
	if err := validateProb(bias); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	c := &ChoiceSource{bias: bias, rng: rng}
	if bias == 0.5 {
		if b, ok := rng.(bitSource); ok {
			c.bits = b
		}
	}
	return c, nil
}

// Next returns true ("deflect right") with probability Bias.
func (c *ChoiceSource) Next() bool {
	if c.bits == nil {
		return bernoulli(c.bias, c.rng)
	}
	if c.avail == 0 {
		c.word = c.bits.Uint64()
		c.avail = 64
	}
	c.avail--
	right := c.word&1 == 1
	c.word >>= 1
	return right
}

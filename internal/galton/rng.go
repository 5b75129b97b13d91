package galton

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// RandomSource abstract

type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}

	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, replays)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// Uint64 lets ChoiceSource pull 64 fair bits per draw.
func (s *seededRNG) Uint64() uint64 { return s.r.Uint64() }

// NewWorkerRNG returns a PCG source owned by a single worker.
// Each call pulls fresh entropy, so two workers never share a stream even
// when they are created in the same instant.
func NewWorkerRNG(worker int) RandomSource {
	hi, lo := entropySeed()
	// golden-ratio increment keeps neighbouring worker indices far apart
	lo ^= uint64(worker+1) * 0x9E3779B97F4A7C15
	return &seededRNG{r: rand.New(rand.NewPCG(hi, lo))}
}

func entropySeed() (uint64, uint64) {
	var buf [16]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		return now, now ^ rand.Uint64()
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])
}

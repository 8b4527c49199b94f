package engine

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the randomness consumed by the Random strategy and
// the noise modifier. Injecting a seeded source makes runs replicable.
type RandomSource interface {
	IntN(n int) int // uniform in [0, n)
}

// crypto-backed source: the default when the caller does not care about replay.
type cryptoRNG struct{}

func (cryptoRNG) IntN(n int) int {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// fall back to math/rand/v2
		return rand.IntN(n)
	}
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}

// DefaultRNG returns the crypto-backed random source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG for tests and scripted comparisons.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic PCG-backed source for the given seed.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }

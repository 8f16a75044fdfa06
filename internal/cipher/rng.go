package cipher

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand/v2"
)

// Tier states how much an entropy source can be trusted.
type Tier int

const (
	// TierSecure sources are suitable for cover traffic and markers.
	TierSecure Tier = iota
	// TierDeterministic sources replay the same sequence for the same seed
	// and exist for test fixtures only.
	TierDeterministic
)

func (t Tier) String() string {
	switch t {
	case TierSecure:
		return "secure"
	case TierDeterministic:
		return "deterministic"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Source draws uniform integers for padding and marker generation.
type Source interface {
	// Intn returns a uniform integer in [0,n). n must be positive.
	Intn(n int) (int, error)
	Tier() Tier
}

// CryptoSource draws from a cryptographically secure reader, crypto/rand by
// default.
type CryptoSource struct {
	Reader io.Reader
}

func (s CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("rng: bound must be positive")
	}
	reader := s.Reader
	if reader == nil {
		reader = rand.Reader
	}
	v, err := rand.Int(reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("rng: %w", err)
	}
	return int(v.Int64()), nil
}

func (CryptoSource) Tier() Tier { return TierSecure }

// SeededSource is a reproducible generator for tests.
type SeededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic source for seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("rng: bound must be positive")
	}
	return s.rng.IntN(n), nil
}

func (*SeededSource) Tier() Tier { return TierDeterministic }

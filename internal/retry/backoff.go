package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes how long to wait before a retry.
//
// attempt is the 1-based number of the retry about to happen.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// NoBackoff retries immediately.
type NoBackoff struct{}

func (NoBackoff) Delay(int) time.Duration { return 0 }

// FixedBackoff waits the same amount before every retry.
type FixedBackoff struct {
	Interval time.Duration
}

func (b FixedBackoff) Delay(int) time.Duration { return b.Interval }

// LinearBackoff waits delay * attempt.
type LinearBackoff struct {
	Step time.Duration
}

func (b LinearBackoff) Delay(attempt int) time.Duration {
	return b.Step * time.Duration(attempt)
}

type Jitter int

const (
	NoJitter Jitter = iota
	// FullJitter draws uniformly from [0, computed delay).
	FullJitter
)

// ExponentialBackoff waits min(Initial * Base^attempt, Max).
type ExponentialBackoff struct {
	Initial time.Duration
	Base    float64
	Max     time.Duration
	Jitter  Jitter
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	d := b.Ceiling(attempt)
	if b.Jitter == FullJitter && d > 0 {
		return time.Duration(rand.Int64N(int64(d)))
	}
	return d
}

// Ceiling is the delay for attempt before jitter is applied.
func (b ExponentialBackoff) Ceiling(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = 2
	}
	raw := float64(b.Initial) * math.Pow(base, float64(attempt))
	if b.Max > 0 && (raw > float64(b.Max) || math.IsInf(raw, 0)) {
		return b.Max
	}
	if raw > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(raw)
}

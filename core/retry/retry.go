package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy controls how often and how patiently an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, the first included.
	Attempts int `mapstructure:"attempts" default:"3"`
	// Initial is the wait before the second try.
	Initial time.Duration `mapstructure:"initial" default:"200ms"`
	// Max caps the wait between tries.
	Max time.Duration `mapstructure:"max" default:"5s"`
	// Multiplier grows the wait after every failed try.
	Multiplier float64 `mapstructure:"multiplier" default:"2"`
	// Jitter spreads each wait by up to this fraction in either direction.
	Jitter float64 `mapstructure:"jitter" default:"0.1"`
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Initial:    200 * time.Millisecond,
		Max:        5 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
	}
}

// Backoff returns the wait that follows the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(p.Initial) * math.Pow(mult, float64(attempt-1))
	if p.Max > 0 && wait > float64(p.Max) {
		wait = float64(p.Max)
	}
	if p.Jitter > 0 {
		wait += wait * p.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(wait)
}

type temporary struct {
	err error
}

func (t temporary) Error() string { return t.err.Error() }
func (t temporary) Unwrap() error { return t.err }

// Temporary marks err as worth another attempt. Nil stays nil.
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return temporary{err: err}
}

// IsTemporary reports whether err was marked with Temporary.
func IsTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t)
}

// Do runs fn until it succeeds, returns an error not marked Temporary, the
// attempts run out, or ctx is done. The error of the last try is returned
// without the Temporary marker.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsTemporary(err) {
			return zero, err
		}
		last = errors.Unwrap(err)
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, last
}

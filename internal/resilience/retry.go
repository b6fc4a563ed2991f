// Package resilience retries transient failures around bulk-file downloads.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy controls how many times an operation is tried and how long to wait
// between tries. Delays double on each retry, capped at Cap, with random
// jitter applied as a fraction of the computed delay.
type Policy struct {
	// Attempts is the total number of tries including the first; 1 disables
	// retrying entirely.
	Attempts int

	// Base is the delay before the second try.
	Base time.Duration

	// Cap is the ceiling on any single delay.
	Cap time.Duration

	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64

	// Notify, when set, is called with the completed try number and its error
	// before each sleep.
	Notify func(try int, err error)
}

// DownloadPolicy is the policy used for CAL-ACCESS bulk downloads.
func DownloadPolicy() Policy {
	return Policy{
		Attempts: 3,
		Base:     500 * time.Millisecond,
		Cap:      30 * time.Second,
		Jitter:   0.25,
	}
}

// Do runs fn under the policy, retrying only errors IsTransient accepts.
// A canceled context stops retrying immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for operations that produce a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	for try := 1; ; try++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !IsTransient(err) || try >= p.Attempts {
			return zero, err
		}
		if p.Notify != nil {
			p.Notify(try, err)
		}
		select {
		case <-ctx.Done():
			return zero, err
		case <-time.After(p.delay(try)):
		}
	}
}

func (p Policy) normalized() Policy {
	def := DownloadPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Base <= 0 {
		p.Base = def.Base
	}
	if p.Cap <= 0 {
		p.Cap = def.Cap
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

func (p Policy) delay(try int) time.Duration {
	d := float64(p.Base) * math.Pow(2, float64(try-1))
	if d > float64(p.Cap) {
		d = float64(p.Cap)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// LogRetries returns a Notify callback that logs each retry of a download.
func LogRetries(url string) func(int, error) {
	return func(try int, err error) {
		zap.L().Warn("retrying download",
			zap.String("url", url),
			zap.Int("try", try),
			zap.Error(err),
		)
	}
}

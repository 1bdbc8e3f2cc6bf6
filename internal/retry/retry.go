// Package retry re-runs failing operations according to a Policy.
package retry

import (
	"context"
	"time"
)

// Retries bounds how many times an operation is re-run after its first attempt.
type Retries struct {
	n          int
	indefinite bool
}

// NTimes allows the initial attempt plus up to n retries.
func NTimes(n int) Retries {
	if n < 0 {
		n = 0
	}
	return Retries{n: n}
}

// Indefinitely retries until the operation succeeds or the context ends.
func Indefinitely() Retries {
	return Retries{indefinite: true}
}

func (r Retries) allows(retry int) bool {
	return r.indefinite || retry <= r.n
}

type Policy struct {
	Retries Retries
	Backoff Backoff
}

type options struct {
	retryIf func(error) bool
}

type Option func(*options)

// RetryIf stops retrying as soon as fn reports false for an error.
// That error is returned as is.
func RetryIf(fn func(error) bool) Option {
	return func(o *options) { o.retryIf = fn }
}

// Do calls op until it succeeds or the policy is exhausted.
//
// The first call is made immediately. The backoff delay is waited before each
// retry and never after the last attempt. On exhaustion the error from the
// last call is returned unchanged. If ctx ends while waiting, the last error
// is returned as well.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error), opts ...Option) (T, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	backoff := policy.Backoff
	if backoff == nil {
		backoff = NoBackoff{}
	}

	result, err := op(ctx)
	for retry := 1; err != nil; retry++ {
		if o.retryIf != nil && !o.retryIf(err) {
			return result, err
		}
		if !policy.Retries.allows(retry) {
			return result, err
		}
		if !wait(ctx, backoff.Delay(retry)) {
			return result, err
		}
		result, err = op(ctx)
	}
	return result, nil
}

// Exec is Do for operations without a result.
func Exec(ctx context.Context, policy Policy, op func(context.Context) error, opts ...Option) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package services

import (
	"context"
	"errors"

	"artifact-hub-service/internal/core/domain"
	"artifact-hub-service/internal/retry"
)

// RetryPolicies are the retry settings used for repository and broker calls.
type RetryPolicies struct {
	Repository retry.Policy
	Broker     retry.Policy
}

// transient reports whether a repository error is worth retrying. Missing
// records, conflicts and domain rule violations are permanent.
func transient(err error) bool {
	switch {
	case domain.IsNotFound(err),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func withRepoRetry[T any](ctx context.Context, policy retry.Policy, op func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, policy, op, retry.RetryIf(transient))
}

func execRepoRetry(ctx context.Context, policy retry.Policy, op func(context.Context) error) error {
	return retry.Exec(ctx, policy, op, retry.RetryIf(transient))
}

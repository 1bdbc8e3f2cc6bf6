package worker

import (
	"artifact-hub-service/internal/adapters/secondary/rabbitmq"
	"artifact-hub-service/internal/core/domain"
)

// storeFault classifies a repository error that leaves a message unsettled.
// A missing record stays a consistency fault. Anything else means the
// database outlived the retry policy.
func storeFault(err error) error {
	if domain.IsNotFound(err) {
		return err
	}
	return &rabbitmq.FatalError{Kind: rabbitmq.FaultRepository, Err: err}
}

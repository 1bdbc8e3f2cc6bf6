package rabbitmq

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"artifact-hub-service/internal/retry"
)

type ConnectConfig struct {
	URL         string
	Attempts    int
	Delay       time.Duration
	ConnectName string
}

// Connect dials the broker, retrying up to cfg.Attempts times on network
// errors. Any other error, such as refused credentials, is returned at once.
func Connect(ctx context.Context, cfg ConnectConfig) (*amqp.Connection, error) {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	policy := retry.Policy{
		Retries: retry.NTimes(attempts - 1),
		Backoff: retry.FixedBackoff{Interval: cfg.Delay},
	}

	attempt := 0
	return retry.Do(ctx, policy, func(ctx context.Context) (*amqp.Connection, error) {
		attempt++
		conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
			Heartbeat:  10 * time.Second,
			Locale:     "en_US",
			Properties: amqp.Table{"connection_name": cfg.ConnectName},
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"attempt":      attempt,
				"max_attempts": attempts,
			}).Warn("broker connection attempt failed")
			return nil, err
		}
		return conn, nil
	}, retry.RetryIf(IsNetworkError))
}

// IsNetworkError reports whether err came from the network rather than from
// the broker refusing the connection.
func IsNetworkError(err error) bool {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcker struct {
	mu     sync.Mutex
	acks   []uint64
	nacks  []uint64
	requeu []bool
	err    error
}

func (a *recordingAcker) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks = append(a.acks, tag)
	return a.err
}

func (a *recordingAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks = append(a.nacks, tag)
	a.requeu = append(a.requeu, requeue)
	return a.err
}

func (a *recordingAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type handlerFunc func(ctx context.Context, body []byte) (Outcome, error)

func (f handlerFunc) Handle(ctx context.Context, body []byte) (Outcome, error) {
	return f(ctx, body)
}

func delivery(acker amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: acker, DeliveryTag: tag, Body: []byte(body)}
}

func TestServe_AcksAndRejects(t *testing.T) {
	acker := &recordingAcker{}
	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- delivery(acker, 1, "ok")
	deliveries <- delivery(acker, 2, "bad")
	close(deliveries)

	h := handlerFunc(func(ctx context.Context, body []byte) (Outcome, error) {
		if string(body) == "ok" {
			return Ack, nil
		}
		return Reject, nil
	})

	err := serve(context.Background(), IngestRoute, deliveries, h, func() {})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, FaultBroker, fatal.Kind)
	assert.Equal(t, []uint64{1}, acker.acks)
	assert.Equal(t, []uint64{2}, acker.nacks)
	assert.Equal(t, []bool{false}, acker.requeu)
}

func TestServe_HandlerErrorIsConsistencyFault(t *testing.T) {
	acker := &recordingAcker{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(acker, 7, "{}")

	cause := errors.New("ingestion vanished")
	h := handlerFunc(func(ctx context.Context, body []byte) (Outcome, error) {
		return Reject, cause
	})

	err := serve(context.Background(), IngestRoute, deliveries, h, func() {})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, FaultConsistency, fatal.Kind)
	assert.Equal(t, 2, fatal.ExitCode())
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, acker.acks)
	assert.Empty(t, acker.nacks)
}

func TestServe_HandlerFaultKindIsKept(t *testing.T) {
	acker := &recordingAcker{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(acker, 9, "{}")

	h := handlerFunc(func(ctx context.Context, body []byte) (Outcome, error) {
		return Reject, &FatalError{Kind: FaultRepository, Err: errors.New("connection refused")}
	})

	err := serve(context.Background(), IngestRoute, deliveries, h, func() {})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, FaultRepository, fatal.Kind)
	assert.Equal(t, 3, fatal.ExitCode())
	assert.Empty(t, acker.acks)
	assert.Empty(t, acker.nacks)
}

func TestServe_AckFailureIsBrokerFault(t *testing.T) {
	acker := &recordingAcker{err: errors.New("channel closed")}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(acker, 3, "{}")

	h := handlerFunc(func(ctx context.Context, body []byte) (Outcome, error) { return Ack, nil })

	err := serve(context.Background(), PublishRoute, deliveries, h, func() {})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, FaultBroker, fatal.Kind)
	assert.Equal(t, 3, fatal.ExitCode())
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deliveries := make(chan amqp.Delivery)

	cancelled := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, IngestRoute, deliveries, handlerFunc(func(context.Context, []byte) (Outcome, error) {
			return Ack, nil
		}), func() { close(cancelled) })
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	_, open := <-cancelled
	assert.False(t, open)
}

func TestServe_HandlerContextSurvivesShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	acker := &recordingAcker{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(acker, 1, "{}")

	var handlerErr error
	h := handlerFunc(func(hctx context.Context, body []byte) (Outcome, error) {
		cancel()
		handlerErr = hctx.Err()
		return Ack, nil
	})

	err := serve(ctx, IngestRoute, deliveries, h, func() {})
	assert.NoError(t, err)
	assert.NoError(t, handlerErr)
	assert.Equal(t, []uint64{1}, acker.acks)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ack", Ack.String())
	assert.Equal(t, "reject", Reject.String())
}

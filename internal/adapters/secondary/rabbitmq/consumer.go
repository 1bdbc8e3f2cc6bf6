package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"artifact-hub-service/internal/metrics"
)

type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Reject drops the message without requeueing it.
	Reject
)

func (o Outcome) String() string {
	if o == Ack {
		return "ack"
	}
	return "reject"
}

// Handler processes one message body. A returned error means the process
// cannot continue safely and the consumer stops without settling the message.
// Errors that are not a *FatalError are treated as consistency faults.
type Handler interface {
	Handle(ctx context.Context, body []byte) (Outcome, error)
}

type FaultKind string

const (
	// FaultConsistency means broker and database disagree.
	FaultConsistency FaultKind = "consistency"
	// FaultBroker means the broker became unusable.
	FaultBroker FaultKind = "broker"
	// FaultRepository means the database stayed unavailable after retries.
	FaultRepository FaultKind = "repository"
)

// FatalError stops a worker process.
type FatalError struct {
	Kind FaultKind
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s fault: %v", e.Kind, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// ExitCode is the process exit status for the fault kind.
func (e *FatalError) ExitCode() int {
	if e.Kind == FaultConsistency {
		return 2
	}
	return 3
}

type Consumer struct {
	conn     *amqp.Connection
	prefetch int
	tag      string
}

func NewConsumer(conn *amqp.Connection, prefetch int, tag string) *Consumer {
	if prefetch < 1 {
		prefetch = 1
	}
	return &Consumer{conn: conn, prefetch: prefetch, tag: tag}
}

// Run consumes route until ctx ends or a fatal error occurs. Messages are
// handled one at a time. A message in progress is finished even if ctx ends.
func (c *Consumer) Run(ctx context.Context, route Route, h Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return &FatalError{Kind: FaultBroker, Err: fmt.Errorf("open channel: %w", err)}
	}
	defer ch.Close()

	if err := DeclareTopology(ch, route); err != nil {
		return &FatalError{Kind: FaultBroker, Err: err}
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return &FatalError{Kind: FaultBroker, Err: fmt.Errorf("set qos: %w", err)}
	}
	deliveries, err := ch.Consume(route.Queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return &FatalError{Kind: FaultBroker, Err: fmt.Errorf("consume %s: %w", route.Queue, err)}
	}

	log.WithFields(log.Fields{"queue": route.Queue, "consumer": c.tag}).Info("consumer started")
	return serve(ctx, route, deliveries, h, func() {
		if err := ch.Cancel(c.tag, false); err != nil {
			log.WithError(err).Warn("cancel consumer")
		}
	})
}

func serve(ctx context.Context, route Route, deliveries <-chan amqp.Delivery, h Handler, cancel func()) error {
	for {
		select {
		case <-ctx.Done():
			cancel()
			log.WithField("queue", route.Queue).Info("consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return &FatalError{Kind: FaultBroker, Err: errors.New("delivery channel closed")}
			}
			if err := process(context.WithoutCancel(ctx), route, d, h); err != nil {
				return err
			}
		}
	}
}

func process(ctx context.Context, route Route, d amqp.Delivery, h Handler) error {
	ctx, span := tracer.Start(ctx, "consumer.processMessage",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.source", route.Queue),
			attribute.String("messaging.message_id", d.MessageId),
			attribute.Bool("messaging.redelivered", d.Redelivered),
		))
	defer span.End()

	entry := log.WithFields(log.Fields{
		"queue":        route.Queue,
		"delivery_tag": d.DeliveryTag,
		"message_id":   d.MessageId,
	})

	start := time.Now()
	outcome, err := h.Handle(ctx, d.Body)
	metrics.WorkerMessageDuration.WithLabelValues(route.Queue).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.WorkerMessagesTotal.WithLabelValues(route.Queue, "fatal").Inc()
		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		return &FatalError{Kind: FaultConsistency, Err: err}
	}
	metrics.WorkerMessagesTotal.WithLabelValues(route.Queue, outcome.String()).Inc()

	switch outcome {
	case Ack:
		if err := d.Ack(false); err != nil {
			return &FatalError{Kind: FaultBroker, Err: fmt.Errorf("ack delivery %d: %w", d.DeliveryTag, err)}
		}
	default:
		if err := d.Nack(false, false); err != nil {
			return &FatalError{Kind: FaultBroker, Err: fmt.Errorf("nack delivery %d: %w", d.DeliveryTag, err)}
		}
	}
	entry.WithField("outcome", outcome.String()).Debug("message handled")
	return nil
}

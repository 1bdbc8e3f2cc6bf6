package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"artifact-hub-service/internal/core/ports/output"
	"artifact-hub-service/internal/metrics"
)

var tracer = otel.Tracer("rabbitmq")

// Publisher publishes work events with mandatory routing and publisher
// confirms. The connection is dialled on first use and again whenever the
// broker has closed it.
type Publisher struct {
	url  string
	dial func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dial: amqp.Dial}
}

func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	route, body, err := MessageFromEvent(event)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "publisher.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", route.Exchange),
			attribute.String("messaging.routing_key", route.RoutingKey),
		))
	defer span.End()

	if err := p.publish(ctx, route, body); err != nil {
		span.RecordError(err)
		metrics.BrokerPublishTotal.WithLabelValues(route.Exchange, "error").Inc()
		return err
	}
	metrics.BrokerPublishTotal.WithLabelValues(route.Exchange, "ok").Inc()
	return nil
}

func (p *Publisher) publish(ctx context.Context, route Route, body []byte) error {
	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrBrokerConnection, err)
	}
	defer ch.Close()

	if err := declareExchange(ch, route); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrBroker, err)
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("%w: enable confirms: %v", ports.ErrBroker, err)
	}
	returns := ch.NotifyReturn(make(chan amqp.Return, 1))

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, route.Exchange, route.RoutingKey, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: publish: %v", ports.ErrBroker, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: wait for confirm: %v", ports.ErrBroker, err)
	}

	// A returned message is delivered before its confirm on the same channel.
	select {
	case ret := <-returns:
		return fmt.Errorf("%w: message returned by broker: %d %s", ports.ErrBroker, ret.ReplyCode, ret.ReplyText)
	default:
	}
	if !acked {
		return fmt.Errorf("%w: message nacked by broker", ports.ErrBroker)
	}
	return nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		if p.conn.IsClosed() {
			p.conn = nil
		}
		return nil, err
	}
	return ch, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

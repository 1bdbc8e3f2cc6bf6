package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Route names where one kind of work item is published and consumed.
type Route struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

var (
	IngestRoute = Route{
		Exchange:   "exchange.artifact.ingest",
		Queue:      "queue.artifact.ingest",
		RoutingKey: "artifact.ingest.queue",
	}
	PublishRoute = Route{
		Exchange:   "exchange.artifact.publish",
		Queue:      "queue.artifact.publish",
		RoutingKey: "artifact.publish.queue",
	}
)

// declarer is the subset of *amqp.Channel used to declare topology.
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

func declareExchange(ch declarer, r Route) error {
	if err := ch.ExchangeDeclare(r.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", r.Exchange, err)
	}
	return nil
}

// DeclareTopology declares the exchange and queue of r and binds them. It can
// be called any number of times.
func DeclareTopology(ch declarer, r Route) error {
	if err := declareExchange(ch, r); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(r.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", r.Queue, err)
	}
	if err := ch.QueueBind(r.Queue, r.RoutingKey, r.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", r.Queue, err)
	}
	return nil
}

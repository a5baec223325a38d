package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	dialAttempts = 10
	// deliveryLimit caps redeliveries before the broker dead-letters an item.
	deliveryLimit = 5
	// prefetch bounds unacked deliveries held by this consumer.
	prefetch = 10
)

// AMQPSource consumes work items from a durable quorum queue with manual
// acknowledgements. Unacked deliveries are invisible to other consumers until
// acked or nacked, which is what implements the visibility window here:
// Acknowledge maps to Ack, SetVisibility(0) maps to Nack with requeue.
type AMQPSource struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	queue      string
	log        zerolog.Logger
}

// DialAMQP connects to the broker, declares the work queue and its
// dead-letter companion, and starts a manual-ack consumer. The broker may
// come up after us, so the dial retries with a growing sleep.
func DialAMQP(url, queueName string, log zerolog.Logger) (*AMQPSource, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(time.Second * time.Duration(1+i))
	}
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	deadLetter := queueName + ".dead-letter"
	if _, err := ch.QueueDeclare(deadLetter, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare dead-letter queue %q: %w", deadLetter, err)
	}
	args := amqp.Table{
		"x-queue-type":              "quorum",
		"x-delivery-limit":          int32(deliveryLimit),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": deadLetter,
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, args); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	tag := "extract-" + uuid.NewString()
	deliveries, err := ch.Consume(queueName, tag, false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("consume %q: %w", queueName, err)
	}

	log.Info().Str("queue", queueName).Str("consumer_tag", tag).Msg("consuming work queue")

	return &AMQPSource{
		conn:       conn,
		ch:         ch,
		deliveries: deliveries,
		queue:      queueName,
		log:        log,
	}, nil
}

// Receive gathers up to max deliveries, waiting at most wait for the first
// and the rest of the window for more. The visibility argument is accepted
// for interface parity but has no broker-side knob here: an unacked delivery
// stays hidden until this consumer resolves it.
func (s *AMQPSource) Receive(ctx context.Context, max int, _, wait time.Duration) ([]WorkItem, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	var items []WorkItem
	for len(items) < max {
		select {
		case d, ok := <-s.deliveries:
			if !ok {
				return items, ErrClosed
			}
			items = append(items, &amqpItem{d: d})
		case <-timer.C:
			return items, nil
		case <-ctx.Done():
			return items, ctx.Err()
		}
	}
	return items, nil
}

func (s *AMQPSource) Close() error {
	if err := s.ch.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

type amqpItem struct {
	d amqp.Delivery
}

func (i *amqpItem) Body() []byte { return i.d.Body }

func (i *amqpItem) Acknowledge() error { return i.d.Ack(false) }

// SetVisibility releases the delivery back to the queue. The broker has no
// deferred-redelivery primitive, so any window collapses to immediate
// re-eligibility; redelivery pacing is the broker configuration's concern.
func (i *amqpItem) SetVisibility(time.Duration) error {
	return i.d.Nack(false, true)
}

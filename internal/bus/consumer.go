package bus

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumePosts opens a dedicated channel and starts consuming the shared
// materializer queue with manual acknowledgement. The returned channel of
// deliveries closes when the AMQP channel dies or the consumer is canceled.
func (b *Bus) ConsumePosts() (<-chan amqp.Delivery, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	// One event in flight per consumer keeps redelivery windows small.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(MaterializerQueue, MaterializerTag, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to consume %s: %w", MaterializerQueue, err)
	}

	log.Printf("[Bus] Consume OK: queue=%s tag=%s", MaterializerQueue, MaterializerTag)
	return deliveries, nil
}

// Subscription is a live per-subscriber queue: a dedicated channel, the
// transient queue bound to the push exchange, and its delivery stream.
type Subscription struct {
	Queue      string
	Tag        string
	Deliveries <-chan amqp.Delivery

	ch *amqp.Channel
}

// SubscribeUser declares the subscriber's push queue, binds it to the push
// exchange under the user's routing key and starts consuming it. Each
// subscription gets its own channel so tearing one subscriber down cannot
// disturb the others.
func (b *Bus) SubscribeUser(userID uuid.UUID) (*Subscription, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open subscriber channel: %w", err)
	}

	queue := PushQueueName(userID)
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, UserRoutingKey(userID), PushExchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	tag := "ws." + userID.String()
	deliveries, err := ch.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	log.Printf("[Bus] Subscribe OK: queue=%s user=%s", queue, userID)
	return &Subscription{Queue: queue, Tag: tag, Deliveries: deliveries, ch: ch}, nil
}

// Unsubscribe cancels the consumer, deletes the subscriber queue and closes
// the subscription channel. Closing the channel also closes the delivery
// stream, which unblocks the goroutine draining it.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if err := sub.ch.Cancel(sub.Tag, false); err != nil {
		sub.ch.Close()
		return fmt.Errorf("failed to cancel consumer %s: %w", sub.Tag, err)
	}
	if _, err := sub.ch.QueueDelete(sub.Queue, false, false, false); err != nil {
		sub.ch.Close()
		return fmt.Errorf("failed to delete queue %s: %w", sub.Queue, err)
	}
	if err := sub.ch.Close(); err != nil {
		return fmt.Errorf("failed to close subscriber channel: %w", err)
	}

	log.Printf("[Bus] Unsubscribe OK: queue=%s", sub.Queue)
	return nil
}

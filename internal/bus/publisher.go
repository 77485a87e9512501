package bus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher abstracts event publishing for testing.
type Publisher interface {
	// Broadcast delivers the event to every queue bound to the posts
	// exchange (the materializer on each instance).
	Broadcast(ctx context.Context, event PostEvent) error
	// Direct delivers the event to a single subscriber's push queue.
	Direct(ctx context.Context, target uuid.UUID, event PostEvent) error
}

// AMQPPublisher publishes post events over the shared bus channel.
type AMQPPublisher struct {
	bus *Bus
}

func NewAMQPPublisher(bus *Bus) *AMQPPublisher {
	return &AMQPPublisher{bus: bus}
}

func (p *AMQPPublisher) Broadcast(ctx context.Context, event PostEvent) error {
	return p.publish(ctx, PostsExchange, BroadcastKey, event)
}

func (p *AMQPPublisher) Direct(ctx context.Context, target uuid.UUID, event PostEvent) error {
	return p.publish(ctx, PushExchange, UserRoutingKey(target), event)
}

func (p *AMQPPublisher) publish(ctx context.Context, exchange, key string, event PostEvent) error {
	start := time.Now()

	body, err := event.Encode()
	if err != nil {
		return err
	}

	ch, err := p.bus.publishChannel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.PostID.String(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: exchange=%s key=%s kind=%s err=%v", exchange, key, event.Kind, err)
		return fmt.Errorf("failed to publish to %s: %w", exchange, err)
	}

	log.Printf("[Publisher] Publish OK: exchange=%s key=%s kind=%s post=%s duration=%v",
		exchange, key, event.Kind, event.PostID, time.Since(start))
	return nil
}

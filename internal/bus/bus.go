package bus

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"socialnet/internal/config"
)

// Exchange and queue names shared by the publisher, the materializer
// consumer, and the per-subscriber websocket queues.
const (
	// PostsExchange fans every post event out to all bound queues.
	PostsExchange = "feed.posts"
	// PushExchange routes post events to individual websocket subscribers.
	PushExchange = "feed.push"

	// MaterializerQueue receives every post event exactly once per event.
	MaterializerQueue = "feed.amqprs.post"
	// BroadcastKey is the binding key of the materializer queue.
	BroadcastKey = "feed.userid.all"
	// MaterializerTag identifies the materializer consumer on its channel.
	MaterializerTag = "feed_sub_pub"

	pushQueuePrefix  = "feed.push.ws."
	routingKeyPrefix = "feed.userid."
)

// PushQueueName returns the per-subscriber queue name for a user.
func PushQueueName(userID uuid.UUID) string {
	return pushQueuePrefix + userID.String()
}

// UserRoutingKey returns the direct-exchange routing key for a user.
func UserRoutingKey(userID uuid.UUID) string {
	return routingKeyPrefix + userID.String()
}

// Bus owns the broker connection and a shared publish channel. The publish
// channel is opened lazily and replaced whenever it is found closed; access
// goes through publishChannel so the mutex is never held across broker I/O
// longer than a single operation. Consumers get dedicated channels so a
// consumer-side channel error cannot poison publishing.
type Bus struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// Connect dials the broker and declares the static topology.
func Connect(cfg *config.Config) (*Bus, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUsername, cfg.RabbitMQPassword, cfg.RabbitMQHost, cfg.RabbitMQPort)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	b := &Bus{conn: conn}
	if err := b.declareTopology(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("[Bus] Connected: host=%s exchanges=%s,%s", cfg.RabbitMQHost, PostsExchange, PushExchange)
	return b, nil
}

// declareTopology declares both exchanges and the durable materializer
// queue. Declarations are idempotent, so every instance runs them on boot.
func (b *Bus) declareTopology() error {
	ch, err := b.publishChannel()
	if err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(PostsExchange, "fanout", false, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", PostsExchange, err)
	}
	if err := ch.ExchangeDeclare(PushExchange, "direct", false, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", PushExchange, err)
	}

	if _, err := ch.QueueDeclare(MaterializerQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", MaterializerQueue, err)
	}
	if err := ch.QueueBind(MaterializerQueue, BroadcastKey, PostsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", MaterializerQueue, err)
	}

	return nil
}

// publishChannel returns the shared publish channel, opening a fresh one if
// none exists yet or the previous one died.
func (b *Bus) publishChannel() (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil && !b.ch.IsClosed() {
		return b.ch, nil
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	b.ch = ch
	return ch, nil
}

// Close shuts down the publish channel and the connection.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.ch != nil && !b.ch.IsClosed() {
		b.ch.Close()
	}
	b.ch = nil
	b.mu.Unlock()

	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}
	return nil
}

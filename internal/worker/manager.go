package worker

import (
	"context"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"socialnet/internal/bus"
)

// Manager runs the materializer consumer: it drains the shared broadcast
// queue and routes deliveries to the handler, acking on success and
// requeueing on failure.
type Manager struct {
	bus     *bus.Bus
	handler *Handler

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(b *bus.Bus, handler *Handler) *Manager {
	return &Manager{
		bus:     b,
		handler: handler,
	}
}

// Start begins consuming. Call Stop() to shut down gracefully.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	deliveries, err := m.bus.ConsumePosts()
	if err != nil {
		return err
	}

	m.wg.Add(1)
	go m.run(deliveries)

	log.Printf("[Manager] Materializer started: queue=%s", bus.MaterializerQueue)
	return nil
}

// Stop cancels the consumer loop and blocks until it has drained.
// Deliveries in flight finish; unacked ones will be redelivered.
func (m *Manager) Stop() {
	log.Printf("[Manager] Stopping materializer...")
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] Materializer stopped")
}

func (m *Manager) run(deliveries <-chan amqp.Delivery) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Printf("[Manager] Delivery channel closed")
				return
			}
			m.handleDelivery(d)
		}
	}
}

func (m *Manager) handleDelivery(d amqp.Delivery) {
	event, err := bus.ParsePostEvent(d.Body)
	if err != nil {
		// A payload that cannot be decoded now never will be; requeueing
		// it would loop forever.
		log.Printf("[Manager] Discarding malformed delivery: err=%v", err)
		if err := d.Nack(false, false); err != nil {
			log.Printf("[Manager] NACK error: %v", err)
		}
		return
	}

	if err := m.handler.HandleEvent(m.ctx, event); err != nil {
		log.Printf("[Manager] Handler failed, requeueing: post=%s kind=%s err=%v",
			event.PostID, event.Kind, err)
		if err := d.Nack(false, true); err != nil {
			log.Printf("[Manager] NACK error: %v", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Printf("[Manager] ACK error: %v", err)
	}
}

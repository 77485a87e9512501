package ws

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"socialnet/internal/bus"
)

const (
	// watchdogPeriod is how often the watchdog wakes up.
	watchdogPeriod = 10 * time.Second

	// probeIdleAfter is how long a session may go unproven before the
	// watchdog probes it.
	probeIdleAfter = 5 * time.Second

	// probeMessage is the text frame used to prove a peer is alive.
	probeMessage = "watchdog"
)

// Sink is the writable side of a subscriber connection. *websocket.Conn
// satisfies it; tests substitute their own.
type Sink interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Broker is the slice of the event bus the hub needs: a queue per
// subscriber, torn down when the subscriber goes away.
type Broker interface {
	SubscribeUser(userID uuid.UUID) (*bus.Subscription, error)
	Unsubscribe(sub *bus.Subscription) error
}

// session is one live subscriber: its socket, its bus subscription, and the
// liveness bookkeeping the watchdog works from.
type session struct {
	peer   string
	userID uuid.UUID
	sink   Sink
	sub    *bus.Subscription

	lastAlive time.Time // guarded by Hub.mu

	// writeMu serializes frames to the sink; the delivery pump and the
	// watchdog both write.
	writeMu sync.Mutex
}

// Hub tracks live subscriber sessions keyed by peer address. The map mutex
// is never held across socket or broker I/O.
type Hub struct {
	broker Broker

	mu       sync.Mutex
	sessions map[string]*session
}

func NewHub(broker Broker) *Hub {
	return &Hub{
		broker:   broker,
		sessions: make(map[string]*session),
	}
}

// Register subscribes the user on the bus, tracks the session and starts
// pumping deliveries into the socket.
func (h *Hub) Register(peer string, userID uuid.UUID, sink Sink) error {
	sub, err := h.broker.SubscribeUser(userID)
	if err != nil {
		return fmt.Errorf("failed to subscribe user %s: %w", userID, err)
	}

	s := &session{
		peer:      peer,
		userID:    userID,
		sink:      sink,
		sub:       sub,
		lastAlive: time.Now(),
	}

	h.mu.Lock()
	h.sessions[peer] = s
	h.mu.Unlock()

	go h.deliver(s)

	log.Printf("[Hub] Register OK: peer=%s user=%s queue=%s", peer, userID, sub.Queue)
	return nil
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// deliver pumps bus deliveries into the socket until the subscription is
// torn down. Delivery is best effort: a failed send leaves the peer to the
// watchdog, and the message is acked either way.
func (h *Hub) deliver(s *session) {
	for d := range s.sub.Deliveries {
		s.writeMu.Lock()
		err := s.sink.WriteMessage(websocket.TextMessage, d.Body)
		s.writeMu.Unlock()
		if err != nil {
			log.Printf("[Hub] Push send failed: peer=%s user=%s err=%v", s.peer, s.userID, err)
		}
		if err := d.Ack(false); err != nil {
			log.Printf("[Hub] Push ack failed: peer=%s err=%v", s.peer, err)
		}
	}
}

// RunWatchdog probes idle sessions on every tick until the context ends.
func (h *Hub) RunWatchdog(ctx context.Context) {
	ticker := time.NewTicker(watchdogPeriod)
	defer ticker.Stop()

	log.Printf("[Hub] Watchdog started: period=%v", watchdogPeriod)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Hub] Watchdog stopped")
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep probes every session that has not proven itself recently and reaps
// the ones whose probe fails. The session list is snapshotted under the
// lock; probing happens outside it.
func (h *Hub) sweep() {
	cutoff := time.Now().Add(-probeIdleAfter)

	h.mu.Lock()
	stale := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.lastAlive.Before(cutoff) {
			stale = append(stale, s)
		}
	}
	h.mu.Unlock()

	for _, s := range stale {
		s.writeMu.Lock()
		err := s.sink.WriteMessage(websocket.TextMessage, []byte(probeMessage))
		s.writeMu.Unlock()

		if err != nil {
			log.Printf("[Hub] Probe failed, reaping: peer=%s user=%s err=%v", s.peer, s.userID, err)
			h.reap(s)
			continue
		}

		h.mu.Lock()
		s.lastAlive = time.Now()
		h.mu.Unlock()
	}
}

// reap removes the session and tears its resources down: consumer canceled,
// queue deleted, socket closed. The delivery pump exits when the
// subscription's channel closes.
func (h *Hub) reap(s *session) {
	h.mu.Lock()
	delete(h.sessions, s.peer)
	h.mu.Unlock()

	if err := h.broker.Unsubscribe(s.sub); err != nil {
		log.Printf("[Hub] Unsubscribe failed: peer=%s queue=%s err=%v", s.peer, s.sub.Queue, err)
	}
	s.sink.Close()

	log.Printf("[Hub] Reaped: peer=%s user=%s", s.peer, s.userID)
}

// Shutdown reaps every session. Used on process shutdown so no subscriber
// queues outlive their sockets.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.sessions = make(map[string]*session)
	h.mu.Unlock()

	for _, s := range all {
		if err := h.broker.Unsubscribe(s.sub); err != nil {
			log.Printf("[Hub] Unsubscribe failed: peer=%s queue=%s err=%v", s.peer, s.sub.Queue, err)
		}
		s.sink.Close()
	}

	log.Printf("[Hub] Shutdown: closed %d sessions", len(all))
}

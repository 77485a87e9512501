package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handshakeTimeout bounds how long a fresh connection may take to send its
// identity frame.
const handshakeTimeout = 10 * time.Second

// handshake is the first frame a subscriber sends after the upgrade.
type handshake struct {
	UserID string `json:"user_id"`
}

// Server upgrades HTTP connections and hands identified subscribers to the
// hub. It serves as the handler for the whole realtime listener, so any
// request path upgrades.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection, reads the identity frame and registers
// the session. The socket stays open until the watchdog reaps it or the peer
// goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	peer := conn.RemoteAddr().String()

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		log.Printf("[WS] Handshake read failed: peer=%s err=%v", peer, err)
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	var hs handshake
	if err := json.Unmarshal(frame, &hs); err != nil {
		log.Printf("[WS] Handshake rejected: peer=%s err=%v", peer, err)
		conn.Close()
		return
	}
	userID, err := uuid.Parse(hs.UserID)
	if err != nil {
		log.Printf("[WS] Handshake rejected: peer=%s user_id=%q err=%v", peer, hs.UserID, err)
		conn.Close()
		return
	}

	if err := s.hub.Register(peer, userID, conn); err != nil {
		log.Printf("[WS] Register FAILED: peer=%s user=%s err=%v", peer, userID, err)
		conn.Close()
		return
	}

	go s.discard(conn, peer)
}

// discard drains inbound frames so control messages are processed; the
// subscription protocol has no client messages after the handshake.
func (s *Server) discard(conn *websocket.Conn, peer string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("[WS] Read loop ended: peer=%s err=%v", peer, err)
			return
		}
	}
}

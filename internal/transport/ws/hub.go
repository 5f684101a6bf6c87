package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quizboard/internal/cache"
	"quizboard/internal/model"

	"github.com/rs/zerolog/log"
)

// Hub manages WebSocket connections per room. The first connection of a
// room subscribes to the room's change feed; the last one to leave cancels
// the subscription.
type Hub struct {
	feed  cache.ChangeFeed
	rooms map[string]*roomConns

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

type roomConns struct {
	conns  map[*Connection]struct{}
	cancel context.CancelFunc
	ready  chan struct{}
}

// Connection represents a WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string // Empty for host and viewer connections
	Role     Role
	Send     chan []byte
	Hub      *Hub

	joined chan (<-chan struct{})
}

// NewConnection creates a connection that is not yet registered.
func NewConnection(hub *Hub, roomCode string, role Role, playerID string) *Connection {
	return &Connection{
		RoomCode: roomCode,
		PlayerID: playerID,
		Role:     role,
		Send:     make(chan []byte, 256),
		Hub:      hub,
		joined:   make(chan (<-chan struct{}), 1),
	}
}

// BroadcastMessage is a message to broadcast. A nil To means every
// connection of the room.
type BroadcastMessage struct {
	RoomCode string
	To       *Connection
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(feed cache.ChangeFeed) *Hub {
	h := &Hub{
		feed:       feed,
		rooms:      make(map[string]*roomConns),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			rc, ok := h.rooms[conn.RoomCode]
			if !ok {
				ctx, cancel := context.WithCancel(context.Background())
				rc = &roomConns{
					conns:  make(map[*Connection]struct{}),
					cancel: cancel,
					ready:  make(chan struct{}),
				}
				h.rooms[conn.RoomCode] = rc
				go h.watch(ctx, conn.RoomCode, rc.ready)
			}
			rc.conns[conn] = struct{}{}
			h.mu.Unlock()
			conn.joined <- rc.ready
			log.Debug().Str("room", conn.RoomCode).Str("role", string(conn.Role)).Str("player", conn.PlayerID).Msg("connection registered")

		case conn := <-h.unregister:
			h.mu.Lock()
			if rc, ok := h.rooms[conn.RoomCode]; ok {
				if _, ok := rc.conns[conn]; ok {
					delete(rc.conns, conn)
					close(conn.Send)
					log.Debug().Str("room", conn.RoomCode).Str("role", string(conn.Role)).Msg("connection closed")
				}
				if len(rc.conns) == 0 {
					rc.cancel()
					delete(h.rooms, conn.RoomCode)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				log.Error().Err(err).Str("room", msg.RoomCode).Msg("encode ws message")
				continue
			}
			h.mu.RLock()
			if rc, ok := h.rooms[msg.RoomCode]; ok {
				for conn := range rc.conns {
					if msg.To != nil && msg.To != conn {
						continue
					}
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full; the next snapshot supersedes it
						log.Warn().Str("room", msg.RoomCode).Msg("dropping ws message for slow connection")
					}
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for code, rc := range h.rooms {
				rc.cancel()
				for conn := range rc.conns {
					close(conn.Send)
				}
				delete(h.rooms, code)
			}
			h.mu.Unlock()
			return
		}
	}
}

// watch forwards the room's change feed to its connections until ctx ends.
func (h *Hub) watch(ctx context.Context, code string, ready chan struct{}) {
	var sub *cache.Subscription
	for {
		var err error
		sub, err = h.feed.Subscribe(ctx, code)
		if err == nil {
			break
		}
		log.Error().Err(err).Str("room", code).Msg("subscribe to room feed")
		select {
		case <-ctx.Done():
			close(ready)
			return
		case <-time.After(time.Second):
		}
	}
	close(ready)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			h.Snapshot(ev)
		}
	}
}

// Register adds a connection. The returned channel is closed once the room's
// feed subscription is live.
func (h *Hub) Register(conn *Connection) <-chan struct{} {
	select {
	case h.register <- conn:
		return <-conn.joined
	case <-h.done:
		closed := make(chan struct{})
		close(closed)
		return closed
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Snapshot sends the room event to every connection of the room.
func (h *Hub) Snapshot(ev model.RoomEvent) {
	h.send(ev.Code, nil, MsgSnapshot, ev)
}

// SendTo queues a message for a single connection.
func (h *Hub) SendTo(conn *Connection, msgType MessageType, payload interface{}) {
	h.send(conn.RoomCode, conn, msgType, payload)
}

func (h *Hub) send(code string, to *Connection, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("encode ws payload")
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{RoomCode: code, To: to, Message: msg}:
	case <-h.done:
	}
}

// Watching reports how many connections the room has.
func (h *Hub) Watching(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if rc, ok := h.rooms[code]; ok {
		return len(rc.conns)
	}
	return 0
}

// Close disconnects everyone and stops the hub.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

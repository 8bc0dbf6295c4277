package ws

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"go-inventory-pos/internal/events"
)

// Client is the part of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run owns Clients; it must be the only goroutine touching the map.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.Clients[conn] = true
			h.log.Debug().Int("clients", len(h.Clients)).Msg("client connected")

		case conn := <-h.Unregister:
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}

		case message := <-h.Broadcast:
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("dropping client after failed write")
					conn.Close()
					delete(h.Clients, conn)
				}
			}

		case <-h.done:
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Join registers a client. It returns false once the hub has stopped.
func (h *Hub) Join(c Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client. After Stop, Run has already closed it.
func (h *Hub) Leave(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Send queues a message for every client. It gives up if the hub stopped.
func (h *Hub) Send(message []byte) {
	select {
	case h.Broadcast <- message:
	case <-h.done:
	}
}

// Attach forwards every bus topic to the clients as JSON. Delivery runs on
// the bus's async goroutines so publishers never wait on slow sockets.
func (h *Hub) Attach(bus *events.Bus) error {
	for _, topic := range []string{events.TopicInventory, events.TopicDrawer, events.TopicUser} {
		if err := bus.SubscribeAsync(topic, h.forward); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) forward(ev events.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", ev.Type).Msg("cannot encode event")
		return
	}
	h.Send(msg)
}

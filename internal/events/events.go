// Package events carries change notifications from the services to whoever
// pushes them to clients. Publishing happens after a store transaction has
// committed, never inside it.
package events

import (
	"github.com/asaskevich/EventBus"

	"go-inventory-pos/internal/model"
)

const (
	TopicInventory = "inventory:changed"
	TopicDrawer    = "drawer:changed"
	TopicUser      = "user:status"
)

// Actor is the public face of whoever caused an event. It omits the email,
// which identifies a user at login.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func ActorFrom(a model.Actor) *Actor {
	return &Actor{ID: a.ID, Name: a.Name}
}

// Event is the payload delivered to subscribers and, JSON encoded, to
// websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Message string      `json:"message,omitempty"`
	User    *Actor      `json:"user,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish is a no-op on a nil Bus so services can run without one.
func (b *Bus) Publish(topic string, ev Event) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, ev)
}

// Subscribe registers fn to run synchronously in the publisher's goroutine.
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers fn to run in its own goroutine per event, with
// deliveries to fn serialised.
func (b *Bus) SubscribeAsync(topic string, fn func(Event)) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

// WaitAsync blocks until every async handler has returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}

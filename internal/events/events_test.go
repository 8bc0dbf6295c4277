package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/model"
)

func TestBus_SubscribeReceivesPublished(t *testing.T) {
	b := NewBus()
	var got []Event
	require.NoError(t, b.Subscribe(TopicInventory, func(ev Event) { got = append(got, ev) }))

	b.Publish(TopicInventory, Event{Type: "stock_update", Action: "transfer"})
	b.Publish(TopicDrawer, Event{Type: "drawer_update"})

	require.Len(t, got, 1)
	assert.Equal(t, "transfer", got[0].Action)
}

func TestBus_Async(t *testing.T) {
	b := NewBus()
	ch := make(chan Event, 1)
	require.NoError(t, b.SubscribeAsync(TopicDrawer, func(ev Event) { ch <- ev }))

	b.Publish(TopicDrawer, Event{Action: "start"})
	b.WaitAsync()

	assert.Equal(t, "start", (<-ch).Action)
}

func TestBus_NilIsSafe(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Publish(TopicUser, Event{}) })
}

func TestEvent_ActorOmitsEmail(t *testing.T) {
	ev := Event{
		Type:   "stock_update",
		Action: "transaction",
		User:   ActorFrom(model.Actor{ID: "u1", Name: "Admin", Email: "admin@example.com"}),
	}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"user":{"id":"u1","name":"Admin"}`)
	assert.NotContains(t, string(raw), "admin@example.com")
	assert.NotContains(t, string(raw), "email")
}

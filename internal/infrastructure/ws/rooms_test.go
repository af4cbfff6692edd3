package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	return NewClient(hub, nil, 16)
}

func drainOne(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case payload := <-c.Outbox():
		var f Frame
		require.NoError(t, json.Unmarshal(payload, &f))
		return f
	default:
		t.Fatal("expected a queued event")
		return Frame{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Outbox():
		t.Fatalf("unexpected queued event: %s", payload)
	default:
	}
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	a := newTestClient(t, hub)
	b := newTestClient(t, hub)
	outsider := newTestClient(t, hub)

	hub.Rooms.Subscribe(a, "room-1")
	hub.Rooms.Subscribe(b, "room-1")

	hub.Rooms.Broadcast("room-1", EventNewMessage, nil, nil)

	assert.Equal(t, EventNewMessage, drainOne(t, a).Type)
	assert.Equal(t, EventNewMessage, drainOne(t, b).Type)
	assertEmpty(t, outsider)
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	a := newTestClient(t, hub)
	b := newTestClient(t, hub)
	hub.Rooms.Subscribe(a, "room-1")
	hub.Rooms.Subscribe(b, "room-1")

	hub.Rooms.Broadcast("room-1", EventTypingIndicator, nil, a)

	assertEmpty(t, a)
	assert.Equal(t, EventTypingIndicator, drainOne(t, b).Type)
}

func TestUnsubscribeAllClearsMembership(t *testing.T) {
	hub := NewHub()
	a := newTestClient(t, hub)
	hub.Rooms.Subscribe(a, "room-1")
	hub.Rooms.Subscribe(a, "room-2")

	hub.Rooms.UnsubscribeAll(a)

	assert.False(t, hub.Rooms.InRoom(a, "room-1"))
	assert.False(t, hub.Rooms.InRoom(a, "room-2"))
	assert.Zero(t, hub.Rooms.MemberCount("room-1"))
}

func TestDropRoomRemovesEveryMember(t *testing.T) {
	hub := NewHub()
	a := newTestClient(t, hub)
	b := newTestClient(t, hub)
	hub.Rooms.Subscribe(a, "room-1")
	hub.Rooms.Subscribe(b, "room-1")
	hub.Rooms.Subscribe(a, "room-2")

	hub.Rooms.DropRoom("room-1")

	assert.False(t, hub.Rooms.InRoom(a, "room-1"))
	assert.False(t, hub.Rooms.InRoom(b, "room-1"))
	assert.True(t, hub.Rooms.InRoom(a, "room-2"))

	hub.Rooms.Broadcast("room-1", EventNewMessage, nil, nil)
	assertEmpty(t, a)
	assertEmpty(t, b)
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "conversation:c1", ConversationRoom("c1"))
	assert.Equal(t, "user:u1", UserRoom("u1"))
}

package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceFirstConnectionComesOnline(t *testing.T) {
	p := NewPresence()

	assert.True(t, p.Add("user-1", "conn-a"))
	assert.True(t, p.Online("user-1"))
}

func TestPresenceSecondTabDoesNotReannounce(t *testing.T) {
	p := NewPresence()

	assert.True(t, p.Add("user-1", "conn-a"))
	assert.False(t, p.Add("user-1", "conn-b"))
}

func TestPresenceStaysOnlineWhileATabRemains(t *testing.T) {
	p := NewPresence()
	p.Add("user-1", "conn-a")
	p.Add("user-1", "conn-b")

	assert.False(t, p.Remove("user-1", "conn-a"))
	assert.True(t, p.Online("user-1"))

	assert.True(t, p.Remove("user-1", "conn-b"))
	assert.False(t, p.Online("user-1"))
}

func TestPresenceRemoveUnknownConnection(t *testing.T) {
	p := NewPresence()

	assert.False(t, p.Remove("user-1", "conn-a"))
}

func TestPresenceSnapshotSorted(t *testing.T) {
	p := NewPresence()
	p.Add("charlie", "c1")
	p.Add("alice", "a1")
	p.Add("bob", "b1")

	assert.Equal(t, []string{"alice", "bob", "charlie"}, p.Snapshot())
}

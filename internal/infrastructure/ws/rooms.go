package ws

import "sync"

// StaffRoom is the shared fan-out group for every staff connection.
const StaffRoom = "staff"

// ConversationRoom names the fan-out group for one conversation.
func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// UserRoom names the private per-identity group used for targeted pushes.
func UserRoom(userID string) string {
	return "user:" + userID
}

// Rooms maps live connections to the logical rooms they participate in.
// Membership is additive during a connection's life and reclaimed wholesale on
// disconnect.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Client]struct{}
	joined  map[*Client]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]map[string]struct{}),
	}
}

func (r *Rooms) Subscribe(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[room] == nil {
		r.members[room] = make(map[*Client]struct{})
	}
	r.members[room][c] = struct{}{}

	if r.joined[c] == nil {
		r.joined[c] = make(map[string]struct{})
	}
	r.joined[c][room] = struct{}{}
}

func (r *Rooms) UnsubscribeAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.joined[c] {
		delete(r.members[room], c)
		if len(r.members[room]) == 0 {
			delete(r.members, room)
		}
	}
	delete(r.joined, c)
}

// DropRoom discards a room's membership bookkeeping entirely. Used when a
// conversation closes; future events for that id are no longer routed.
func (r *Rooms) DropRoom(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.members[room] {
		delete(r.joined[c], room)
	}
	delete(r.members, room)
}

// InRoom reports whether the connection is subscribed to the room.
func (r *Rooms) InRoom(c *Client, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.joined[c][room]
	return ok
}

// MemberCount returns the number of connections subscribed to the room.
func (r *Rooms) MemberCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members[room])
}

// Broadcast fans an event out to every connection in the room, optionally
// skipping one connection (typing indicators exclude their sender).
func (r *Rooms) Broadcast(room, eventType string, data interface{}, except *Client) {
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.members[room]))
	for c := range r.members[room] {
		if c == except {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.SendEvent(eventType, data)
	}
}

// BroadcastToUser fans an event out to every connection of one identity.
func (r *Rooms) BroadcastToUser(userID, eventType string, data interface{}) {
	r.Broadcast(UserRoom(userID), eventType, data, nil)
}

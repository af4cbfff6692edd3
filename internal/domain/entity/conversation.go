package entity

import "time"

// Conversation status values. A conversation is "open" while it is waiting or
// active; closed is terminal.
const (
	ConversationWaiting = "waiting"
	ConversationActive  = "active"
	ConversationClosed  = "closed"
)

type Conversation struct {
	ID         string     `json:"id" firestore:"id"`
	UserID     string     `json:"user_id,omitempty" firestore:"userId,omitempty"` // empty for guests
	GuestName  string     `json:"guest_name,omitempty" firestore:"guestName,omitempty"`
	GuestEmail string     `json:"guest_email,omitempty" firestore:"guestEmail,omitempty"`
	Status     string     `json:"status" firestore:"status"`
	StaffID    string     `json:"staff_id,omitempty" firestore:"staffId,omitempty"`
	CreatedAt  time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time  `json:"updated_at" firestore:"updatedAt"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" firestore:"closedAt,omitempty"`
}

// Open reports whether the conversation still accepts messages.
func (c *Conversation) Open() bool {
	return c.Status == ConversationWaiting || c.Status == ConversationActive
}

// ConversationPreview is a conversation annotated with its most recent message,
// as shown in the staff console list.
type ConversationPreview struct {
	*Conversation
	LastMessage *Message `json:"last_message,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
}

package entity

import "time"

// Message sender kinds.
const (
	SenderUser   = "user"
	SenderStaff  = "staff"
	SenderSystem = "system"
)

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderKind     string    `json:"sender_kind" firestore:"senderKind"`
	SenderID       string    `json:"sender_id,omitempty" firestore:"senderId,omitempty"`
	SenderName     string    `json:"sender_name,omitempty" firestore:"senderName,omitempty"`
	Content        string    `json:"content" firestore:"content"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

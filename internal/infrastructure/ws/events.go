package ws

import (
	"encoding/json"

	"lapakku/internal/domain/entity"
)

// Client -> server intent types. Anything outside this set is answered with an
// error event and otherwise ignored.
const (
	IntentPing              = "ping"
	IntentStaffRoomJoin     = "staff_room_join"
	IntentRecoverSession    = "recover_session"
	IntentStartSupport      = "start_support"
	IntentSendMessage       = "send_message"
	IntentStaffJoin         = "staff_join"
	IntentTyping            = "typing"
	IntentListConversations = "list_conversations"
	IntentCloseConversation = "close_conversation"
)

// Server -> client event types.
const (
	EventPong                = "pong"
	EventError               = "error"
	EventSupportStarted      = "support_started"
	EventConversationHistory = "conversation_history"
	EventNewMessage          = "new_message"
	EventStaffJoined         = "staff_joined"
	EventConversationClosed  = "conversation_closed"
	EventNewConversation     = "new_conversation"
	EventPresenceSnapshot    = "presence_snapshot"
	EventConversationsList   = "conversations_list"
	EventTypingIndicator     = "typing_indicator"
)

// Frame is the wire envelope for inbound intents. Data stays raw until the
// intent type selects the payload shape.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is the wire envelope for outbound events.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Intent payloads.

type StartSupportData struct {
	GuestName  string `json:"guest_name,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
}

type RecoverSessionData struct {
	ConversationID string `json:"conversation_id,omitempty"`
}

type SendMessageData struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

type StaffJoinData struct {
	ConversationID string `json:"conversation_id"`
}

type TypingData struct {
	ConversationID string `json:"conversation_id"`
	Typing         bool   `json:"typing"`
}

type CloseConversationData struct {
	ConversationID string `json:"conversation_id"`
}

// Event payloads.

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SupportStartedData struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}

type ConversationHistoryData struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []*entity.Message `json:"messages"`
}

type NewMessageData struct {
	ConversationID string          `json:"conversation_id"`
	Message        *entity.Message `json:"message"`
}

type StaffJoinedData struct {
	ConversationID string `json:"conversation_id"`
	StaffName      string `json:"staff_name"`
}

type ConversationClosedData struct {
	ConversationID string `json:"conversation_id"`
}

type NewConversationData struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	RequesterName  string `json:"requester_name,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Resumed        bool   `json:"resumed"`
}

type PresenceSnapshotData struct {
	Online []string `json:"online"`
}

type ConversationsListData struct {
	Conversations []*entity.ConversationPreview `json:"conversations"`
}

type TypingIndicatorData struct {
	ConversationID string `json:"conversation_id"`
	SenderKind     string `json:"sender_kind"`
	SenderName     string `json:"sender_name"`
	Typing         bool   `json:"typing"`
}

package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/repository"
	"lapakku/internal/domain/service"
	"lapakku/internal/infrastructure/ratelimit"
	"lapakku/internal/infrastructure/ws"
	"lapakku/pkg/errors"
	"lapakku/pkg/logger"
)

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// SupportUseCase coordinates the live support channel: connection admission,
// conversation lifecycle, message fan-out, typing signals and presence. It is
// the only writer to the hub's presence registry and room router.
type SupportUseCase struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	verifier         TokenVerifier
	hub              *ws.Hub
	notifier         service.Notifier
	rateLimiter      *ratelimit.RateLimiter
	locks            *keyedMutex
}

func NewSupportUseCase(
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	verifier TokenVerifier,
	hub *ws.Hub,
	notifier service.Notifier,
) *SupportUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	uc := &SupportUseCase{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		verifier:         verifier,
		hub:              hub,
		notifier:         notifier,
		rateLimiter:      rateLimiter,
		locks:            newKeyedMutex(),
	}
	hub.SetHandler(uc)
	return uc
}

func userLockKey(userID string) string { return "user:" + userID }

func conversationLockKey(id string) string { return "conv:" + id }

// Admit authenticates and registers a new connection. A missing or invalid
// credential leaves the connection anonymous; only a blocked account refuses
// admission.
func (uc *SupportUseCase) Admit(ctx context.Context, client *ws.Client, token string) error {
	if token != "" {
		uid, err := uc.verifier.VerifyToken(ctx, token)
		if err != nil {
			logger.Warn("support: credential rejected, admitting connection %s as anonymous: %v", client.ID, err)
		} else {
			user, err := uc.userRepo.GetByID(ctx, uid)
			if err != nil {
				logger.Warn("support: no profile for verified uid %s, admitting as anonymous: %v", uid, err)
			} else {
				if user.Blocked() {
					return errors.Forbidden("Account is blocked", nil)
				}
				client.UserID = user.ID
				client.Role = user.Role
				client.DisplayName = user.Username
				client.AvatarURL = user.AvatarURL
			}
		}
	}

	uc.hub.Register(client)

	if client.Known() {
		uc.hub.Rooms.Subscribe(client, ws.UserRoom(client.UserID))

		if client.Staff() {
			uc.hub.Rooms.Subscribe(client, ws.StaffRoom)
		} else if uc.hub.Presence.Add(client.UserID, client.ID) {
			uc.broadcastPresence()
		}
	}

	return nil
}

// HandleDisconnect releases presence for the dropped connection. Room
// memberships are reclaimed by the hub immediately after this returns, before
// any further event for the connection can be processed.
func (uc *SupportUseCase) HandleDisconnect(ctx context.Context, client *ws.Client) {
	uc.rateLimiter.Forget(client.ID)

	if client.Known() && !client.Staff() {
		if uc.hub.Presence.Remove(client.UserID, client.ID) {
			uc.broadcastPresence()
		}
	}
}

// HandleIntent dispatches one decoded frame. Every failure is reported to the
// originating connection only.
func (uc *SupportUseCase) HandleIntent(ctx context.Context, client *ws.Client, frame ws.Frame) {
	switch frame.Type {
	case ws.IntentPing:
		client.SendEvent(ws.EventPong, nil)

	case ws.IntentStaffRoomJoin:
		uc.staffRoomJoin(client)

	case ws.IntentStartSupport:
		var data ws.StartSupportData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.startSupport(ctx, client, data)

	case ws.IntentRecoverSession:
		var data ws.RecoverSessionData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.recoverSession(ctx, client, data)

	case ws.IntentSendMessage:
		var data ws.SendMessageData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.sendMessage(ctx, client, data)

	case ws.IntentStaffJoin:
		var data ws.StaffJoinData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.staffJoin(ctx, client, data)

	case ws.IntentTyping:
		var data ws.TypingData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.typing(client, data)

	case ws.IntentListConversations:
		uc.listConversations(ctx, client)

	case ws.IntentCloseConversation:
		var data ws.CloseConversationData
		if !decodeIntent(client, frame.Data, &data) {
			return
		}
		uc.closeConversation(ctx, client, data)

	default:
		logger.Warn("support: unknown intent %q from connection %s", frame.Type, client.ID)
		client.SendError("BAD_REQUEST", "Unknown message type")
	}
}

func decodeIntent(client *ws.Client, raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		client.SendError("BAD_REQUEST", "Invalid payload")
		return false
	}
	return true
}

func (uc *SupportUseCase) staffRoomJoin(client *ws.Client) {
	if !client.Staff() {
		client.SendError("FORBIDDEN", "Staff role required")
		return
	}

	uc.hub.Rooms.Subscribe(client, ws.StaffRoom)
	client.SendEvent(ws.EventPresenceSnapshot, ws.PresenceSnapshotData{Online: uc.hub.Presence.Snapshot()})
}

func (uc *SupportUseCase) startSupport(ctx context.Context, client *ws.Client, data ws.StartSupportData) {
	if allowed, _ := uc.rateLimiter.Allow(client.ID, "start_support"); !allowed {
		client.SendError("TOO_MANY_REQUESTS", "Too many support requests, slow down")
		return
	}

	displayName := client.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(data.GuestName)
	}
	if displayName == "" {
		displayName = "Guest"
	}
	if client.DisplayName == "" {
		client.DisplayName = displayName
	}

	var conversation *entity.Conversation
	resumed := false

	if client.Known() {
		// Serialize per identity so two tabs racing on start-support cannot
		// create duplicate conversations.
		uc.locks.Lock(userLockKey(client.UserID))
		defer uc.locks.Unlock(userLockKey(client.UserID))

		existing, err := uc.conversationRepo.GetOpenByUserID(ctx, client.UserID)
		switch {
		case err == nil:
			conversation = existing
			resumed = true
		case errors.Is(err, "NOT_FOUND"):
		default:
			logger.Error("support: failed to check open conversation for user %s: %v", client.UserID, err)
			client.SendError("INTERNAL_ERROR", "Could not start support chat")
			return
		}
	}

	if conversation == nil {
		conversation = &entity.Conversation{
			UserID:     client.UserID,
			GuestName:  displayName,
			GuestEmail: strings.TrimSpace(data.GuestEmail),
			Status:     entity.ConversationWaiting,
		}
		if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
			logger.Error("support: failed to create conversation for connection %s: %v", client.ID, err)
			client.SendError("INTERNAL_ERROR", "Could not start support chat")
			return
		}
	}

	uc.hub.Rooms.Subscribe(client, ws.ConversationRoom(conversation.ID))

	client.SendEvent(ws.EventSupportStarted, ws.SupportStartedData{
		ConversationID: conversation.ID,
		Status:         conversation.Status,
	})

	uc.hub.Rooms.Broadcast(ws.StaffRoom, ws.EventNewConversation, ws.NewConversationData{
		ConversationID: conversation.ID,
		Status:         conversation.Status,
		RequesterName:  displayName,
		AvatarURL:      client.AvatarURL,
		Resumed:        resumed,
	}, nil)

	if !resumed && uc.notifier != nil {
		uc.notifier.NotifyNewConversation(ctx, conversation)
	}
}

func (uc *SupportUseCase) recoverSession(ctx context.Context, client *ws.Client, data ws.RecoverSessionData) {
	var conversation *entity.Conversation

	if client.Known() {
		uc.locks.Lock(userLockKey(client.UserID))
		existing, err := uc.conversationRepo.GetOpenByUserID(ctx, client.UserID)
		uc.locks.Unlock(userLockKey(client.UserID))

		if err == nil {
			conversation = existing
		} else if !errors.Is(err, "NOT_FOUND") {
			// A failed lookup degrades to "no resumed session".
			logger.Error("support: failed to look up open conversation for user %s: %v", client.UserID, err)
		}
	}

	if conversation == nil && data.ConversationID != "" {
		existing, err := uc.conversationRepo.GetByID(ctx, data.ConversationID)
		if err != nil {
			client.SendError("NOT_FOUND", "Conversation not found")
			return
		}
		if !existing.Open() {
			client.SendError("NOT_FOUND", "Conversation is no longer open")
			return
		}
		// A conversation with a registered owner is never resumable by id
		// alone; ownership holds even on this guest-recovery path.
		if existing.UserID != "" && existing.UserID != client.UserID {
			client.SendError("FORBIDDEN", "Conversation belongs to another account")
			return
		}
		conversation = existing
	}

	if conversation == nil {
		client.SendError("NOT_FOUND", "No active conversation to resume")
		return
	}

	uc.hub.Rooms.Subscribe(client, ws.ConversationRoom(conversation.ID))

	client.SendEvent(ws.EventSupportStarted, ws.SupportStartedData{
		ConversationID: conversation.ID,
		Status:         conversation.Status,
	})

	messages, err := uc.conversationRepo.ListMessages(ctx, conversation.ID)
	if err != nil {
		logger.Error("support: failed to load history for conversation %s: %v", conversation.ID, err)
		client.SendError("INTERNAL_ERROR", "Could not load conversation history")
		return
	}

	client.SendEvent(ws.EventConversationHistory, ws.ConversationHistoryData{
		ConversationID: conversation.ID,
		Messages:       messages,
	})
}

func (uc *SupportUseCase) sendMessage(ctx context.Context, client *ws.Client, data ws.SendMessageData) {
	if allowed, _ := uc.rateLimiter.Allow(client.ID, "send_message"); !allowed {
		client.SendError("TOO_MANY_REQUESTS", "You are sending messages too quickly")
		return
	}

	content := strings.TrimSpace(data.Content)
	if data.ConversationID == "" || content == "" {
		client.SendError("BAD_REQUEST", "Missing conversation id or content")
		return
	}

	room := ws.ConversationRoom(data.ConversationID)
	if !uc.hub.Rooms.InRoom(client, room) {
		client.SendError("FORBIDDEN", "Not joined to this conversation")
		return
	}

	// Serialize per conversation so fan-out order matches persistence order.
	uc.locks.Lock(conversationLockKey(data.ConversationID))
	defer uc.locks.Unlock(conversationLockKey(data.ConversationID))

	conversation, err := uc.conversationRepo.GetByID(ctx, data.ConversationID)
	if err != nil {
		client.SendError("NOT_FOUND", "Conversation not found")
		return
	}
	if !conversation.Open() {
		client.SendError("CONVERSATION_CLOSED", "Conversation is closed")
		return
	}

	senderKind := entity.SenderUser
	if client.Staff() {
		senderKind = entity.SenderStaff
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderKind:     senderKind,
		SenderID:       client.UserID,
		SenderName:     client.DisplayName,
		Content:        content,
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("support: failed to persist message in conversation %s: %v", conversation.ID, err)
		client.SendError("INTERNAL_ERROR", "Could not send message")
		return
	}

	if client.Staff() {
		conversation.Status = entity.ConversationActive
		conversation.StaffID = client.UserID
	} else {
		// A shopper message flags the conversation as needing attention again
		// without touching any existing assignment.
		conversation.Status = entity.ConversationWaiting
	}
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		logger.Error("support: failed to update conversation %s after message: %v", conversation.ID, err)
	}

	uc.hub.Rooms.Broadcast(room, ws.EventNewMessage, ws.NewMessageData{
		ConversationID: conversation.ID,
		Message:        message,
	}, nil)
}

func (uc *SupportUseCase) staffJoin(ctx context.Context, client *ws.Client, data ws.StaffJoinData) {
	if !client.Staff() {
		client.SendError("FORBIDDEN", "Staff role required")
		return
	}
	if data.ConversationID == "" {
		client.SendError("BAD_REQUEST", "Missing conversation id")
		return
	}

	uc.locks.Lock(conversationLockKey(data.ConversationID))
	defer uc.locks.Unlock(conversationLockKey(data.ConversationID))

	conversation, err := uc.conversationRepo.GetByID(ctx, data.ConversationID)
	if err != nil {
		client.SendError("NOT_FOUND", "Conversation not found")
		return
	}
	if !conversation.Open() {
		client.SendError("CONVERSATION_CLOSED", "Conversation is closed")
		return
	}

	conversation.Status = entity.ConversationActive
	conversation.StaffID = client.UserID
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		logger.Error("support: failed to assign conversation %s to staff %s: %v", conversation.ID, client.UserID, err)
		client.SendError("INTERNAL_ERROR", "Could not join conversation")
		return
	}

	room := ws.ConversationRoom(conversation.ID)
	uc.hub.Rooms.Subscribe(client, room)

	messages, err := uc.conversationRepo.ListMessages(ctx, conversation.ID)
	if err != nil {
		logger.Error("support: failed to load history for conversation %s: %v", conversation.ID, err)
	} else {
		client.SendEvent(ws.EventConversationHistory, ws.ConversationHistoryData{
			ConversationID: conversation.ID,
			Messages:       messages,
		})
	}

	uc.hub.Rooms.Broadcast(room, ws.EventStaffJoined, ws.StaffJoinedData{
		ConversationID: conversation.ID,
		StaffName:      client.DisplayName,
	}, nil)
}

func (uc *SupportUseCase) typing(client *ws.Client, data ws.TypingData) {
	if allowed, _ := uc.rateLimiter.Allow(client.ID, "typing"); !allowed {
		return
	}

	if data.ConversationID == "" {
		client.SendError("BAD_REQUEST", "Missing conversation id")
		return
	}

	room := ws.ConversationRoom(data.ConversationID)
	if !uc.hub.Rooms.InRoom(client, room) {
		client.SendError("FORBIDDEN", "Not joined to this conversation")
		return
	}

	senderKind := entity.SenderUser
	if client.Staff() {
		senderKind = entity.SenderStaff
	}

	uc.hub.Rooms.Broadcast(room, ws.EventTypingIndicator, ws.TypingIndicatorData{
		ConversationID: data.ConversationID,
		SenderKind:     senderKind,
		SenderName:     client.DisplayName,
		Typing:         data.Typing,
	}, client)
}

func (uc *SupportUseCase) listConversations(ctx context.Context, client *ws.Client) {
	if !client.Staff() {
		client.SendError("FORBIDDEN", "Staff role required")
		return
	}

	previews, err := uc.ListOpenConversations(ctx)
	if err != nil {
		logger.Error("support: failed to list open conversations: %v", err)
		client.SendError("INTERNAL_ERROR", "Could not list conversations")
		return
	}

	client.SendEvent(ws.EventConversationsList, ws.ConversationsListData{Conversations: previews})
}

func (uc *SupportUseCase) closeConversation(ctx context.Context, client *ws.Client, data ws.CloseConversationData) {
	if data.ConversationID == "" {
		client.SendError("BAD_REQUEST", "Missing conversation id")
		return
	}

	room := ws.ConversationRoom(data.ConversationID)
	if !client.Staff() && !uc.hub.Rooms.InRoom(client, room) {
		client.SendError("FORBIDDEN", "Not joined to this conversation")
		return
	}

	uc.locks.Lock(conversationLockKey(data.ConversationID))
	defer uc.locks.Unlock(conversationLockKey(data.ConversationID))

	conversation, err := uc.conversationRepo.GetByID(ctx, data.ConversationID)
	if err != nil {
		client.SendError("NOT_FOUND", "Conversation not found")
		return
	}

	if conversation.Status == entity.ConversationClosed {
		// Idempotent from the caller's perspective.
		client.SendEvent(ws.EventConversationClosed, ws.ConversationClosedData{ConversationID: conversation.ID})
		return
	}

	now := time.Now()
	conversation.Status = entity.ConversationClosed
	conversation.ClosedAt = &now
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		logger.Error("support: failed to close conversation %s: %v", conversation.ID, err)
		client.SendError("INTERNAL_ERROR", "Could not close conversation")
		return
	}

	uc.hub.Rooms.Broadcast(room, ws.EventConversationClosed, ws.ConversationClosedData{ConversationID: conversation.ID}, nil)
	uc.hub.Rooms.DropRoom(room)
}

func (uc *SupportUseCase) broadcastPresence() {
	uc.hub.Rooms.Broadcast(ws.StaffRoom, ws.EventPresenceSnapshot, ws.PresenceSnapshotData{
		Online: uc.hub.Presence.Snapshot(),
	}, nil)
}

// ListOpenConversations backs both the list_conversations intent and the staff
// console REST endpoint.
func (uc *SupportUseCase) ListOpenConversations(ctx context.Context) ([]*entity.ConversationPreview, error) {
	previews, err := uc.conversationRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	for _, preview := range previews {
		if preview.UserID == "" {
			continue
		}
		user, err := uc.userRepo.GetByID(ctx, preview.UserID)
		if err != nil {
			continue
		}
		preview.AvatarURL = user.AvatarURL
	}

	return previews, nil
}

// GetTranscript returns a conversation's messages for the REST surface. Staff
// may read any transcript; everyone else only their own.
func (uc *SupportUseCase) GetTranscript(ctx context.Context, requesterID, conversationID string) ([]*entity.Message, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	requester, err := uc.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, errors.Forbidden("Unknown requester", err)
	}
	if !requester.StaffCapable() && conversation.UserID != requesterID {
		return nil, errors.Forbidden("Not a participant in this conversation", nil)
	}

	return uc.conversationRepo.ListMessages(ctx, conversationID)
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lapakku/internal/domain/entity"
	"lapakku/internal/infrastructure/ws"
	"lapakku/pkg/errors"
)

type fakeVerifier struct {
	tokens map[string]string
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if uid, ok := f.tokens[token]; ok {
		return uid, nil
	}
	return "", fmt.Errorf("token rejected")
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string, limit, offset int) ([]*entity.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, user := range f.users {
		if user.Role == role {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message
	failMessages  bool
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (f *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	return nil
}

func (f *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *conversation
	return &copied, nil
}

func (f *fakeConversationRepo) GetOpenByUserID(ctx context.Context, userID string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conversation := range f.conversations {
		if conversation.UserID == userID && conversation.Open() {
			copied := *conversation
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Conversation", nil)
}

func (f *fakeConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversations[conversation.ID]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.UpdatedAt = time.Now()
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	return nil
}

func (f *fakeConversationRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMessages {
		return fmt.Errorf("storage unavailable")
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()
	copied := *message
	f.messages[message.ConversationID] = append(f.messages[message.ConversationID], &copied)
	return nil
}

func (f *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Message, 0, len(f.messages[conversationID]))
	for _, message := range f.messages[conversationID] {
		copied := *message
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeConversationRepo) ListOpen(ctx context.Context) ([]*entity.ConversationPreview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ConversationPreview
	for _, conversation := range f.conversations {
		if !conversation.Open() {
			continue
		}
		copied := *conversation
		preview := &entity.ConversationPreview{Conversation: &copied}
		if msgs := f.messages[conversation.ID]; len(msgs) > 0 {
			last := *msgs[len(msgs)-1]
			preview.LastMessage = &last
		}
		out = append(out, preview)
	}
	return out, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	count int
}

func (f *fakeNotifier) NotifyNewConversation(ctx context.Context, conversation *entity.Conversation) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

type coordinatorFixture struct {
	uc           *SupportUseCase
	hub          *ws.Hub
	conversation *fakeConversationRepo
	users        *fakeUserRepo
	notifier     *fakeNotifier
}

func newFixture(users ...*entity.User) *coordinatorFixture {
	hub := ws.NewHub()
	conversationRepo := newFakeConversationRepo()
	userRepo := newFakeUserRepo(users...)
	notifier := &fakeNotifier{}
	verifier := &fakeVerifier{tokens: make(map[string]string)}
	for _, u := range users {
		verifier.tokens["token-"+u.ID] = u.ID
	}

	uc := NewSupportUseCase(conversationRepo, userRepo, verifier, hub, notifier)
	return &coordinatorFixture{
		uc:           uc,
		hub:          hub,
		conversation: conversationRepo,
		users:        userRepo,
		notifier:     notifier,
	}
}

func (fx *coordinatorFixture) connect(t *testing.T, token string) *ws.Client {
	t.Helper()
	client := ws.NewClient(fx.hub, nil, 64)
	require.NoError(t, fx.uc.Admit(context.Background(), client, token))
	return client
}

func (fx *coordinatorFixture) intent(client *ws.Client, intentType string, data interface{}) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	fx.uc.HandleIntent(context.Background(), client, ws.Frame{Type: intentType, Data: raw})
}

func nextEvent(t *testing.T, client *ws.Client) ws.Frame {
	t.Helper()
	select {
	case payload := <-client.Outbox():
		var frame ws.Frame
		require.NoError(t, json.Unmarshal(payload, &frame))
		return frame
	default:
		t.Fatal("expected a queued event")
		return ws.Frame{}
	}
}

func expectEvent(t *testing.T, client *ws.Client, eventType string, out interface{}) {
	t.Helper()
	frame := nextEvent(t, client)
	require.Equal(t, eventType, frame.Type, "unexpected event %s: %s", frame.Type, frame.Data)
	if out != nil {
		require.NoError(t, json.Unmarshal(frame.Data, out))
	}
}

func expectError(t *testing.T, client *ws.Client, code string) {
	t.Helper()
	var data ws.ErrorData
	expectEvent(t, client, ws.EventError, &data)
	assert.Equal(t, code, data.Code)
}

func expectSilence(t *testing.T, client *ws.Client) {
	t.Helper()
	select {
	case payload := <-client.Outbox():
		t.Fatalf("unexpected event: %s", payload)
	default:
	}
}

func drain(client *ws.Client) {
	for {
		select {
		case <-client.Outbox():
		default:
			return
		}
	}
}

func staffUser(id string) *entity.User {
	return &entity.User{ID: id, Username: "Agent " + id, Role: entity.RoleStaff, Status: entity.StatusActive}
}

func customerUser(id string) *entity.User {
	return &entity.User{ID: id, Username: "Customer " + id, Role: entity.RoleCustomer, Status: entity.StatusActive}
}

func TestAdmitInvalidTokenFallsBackToGuest(t *testing.T) {
	fx := newFixture()

	client := fx.connect(t, "garbage-token")

	assert.Equal(t, ws.RoleAnonymous, client.Role)
	assert.Empty(t, client.UserID)
	assert.Equal(t, 1, fx.hub.ClientCount())
}

func TestAdmitBlockedAccountRefused(t *testing.T) {
	blocked := customerUser("u1")
	blocked.Status = entity.StatusBlocked
	fx := newFixture(blocked)

	client := ws.NewClient(fx.hub, nil, 64)
	err := fx.uc.Admit(context.Background(), client, "token-u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Zero(t, fx.hub.ClientCount())
}

func TestAdmitStaffJoinsStaffRoom(t *testing.T) {
	fx := newFixture(staffUser("s1"))

	staff := fx.connect(t, "token-s1")

	assert.True(t, fx.hub.Rooms.InRoom(staff, ws.StaffRoom))
	assert.True(t, fx.hub.Rooms.InRoom(staff, ws.UserRoom("s1")))
}

func TestPresenceAnnouncedOncePerIdentity(t *testing.T) {
	fx := newFixture(staffUser("s1"), customerUser("u1"))
	staff := fx.connect(t, "token-s1")

	tab1 := fx.connect(t, "token-u1")
	var snapshot ws.PresenceSnapshotData
	expectEvent(t, staff, ws.EventPresenceSnapshot, &snapshot)
	assert.Equal(t, []string{"u1"}, snapshot.Online)

	// A second tab for the same identity is not re-announced.
	tab2 := fx.connect(t, "token-u1")
	expectSilence(t, staff)

	// Closing one tab keeps the identity online.
	fx.hub.Unregister(tab1)
	expectSilence(t, staff)

	// Closing the last tab takes it offline.
	fx.hub.Unregister(tab2)
	expectEvent(t, staff, ws.EventPresenceSnapshot, &snapshot)
	assert.Empty(t, snapshot.Online)
}

func TestStartSupportCreatesWaitingConversation(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, ws.StartSupportData{GuestName: "Dewi"})

	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	assert.Equal(t, entity.ConversationWaiting, started.Status)
	assert.NotEmpty(t, started.ConversationID)
	assert.True(t, fx.hub.Rooms.InRoom(guest, ws.ConversationRoom(started.ConversationID)))

	var announced ws.NewConversationData
	expectEvent(t, staff, ws.EventNewConversation, &announced)
	assert.Equal(t, started.ConversationID, announced.ConversationID)
	assert.Equal(t, "Dewi", announced.RequesterName)
	assert.False(t, announced.Resumed)

	assert.Equal(t, 1, fx.notifier.calls())
}

func TestStartSupportReusesOpenConversation(t *testing.T) {
	fx := newFixture(customerUser("u1"))
	tab1 := fx.connect(t, "token-u1")
	tab2 := fx.connect(t, "token-u1")

	fx.intent(tab1, ws.IntentStartSupport, nil)
	var first ws.SupportStartedData
	expectEvent(t, tab1, ws.EventSupportStarted, &first)

	fx.intent(tab2, ws.IntentStartSupport, nil)
	var second ws.SupportStartedData
	expectEvent(t, tab2, ws.EventSupportStarted, &second)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, 1, fx.notifier.calls())
}

func TestTwoGuestsGetSeparateConversations(t *testing.T) {
	fx := newFixture()
	guestA := fx.connect(t, "")
	guestB := fx.connect(t, "")

	fx.intent(guestA, ws.IntentStartSupport, nil)
	fx.intent(guestB, ws.IntentStartSupport, nil)

	var a, b ws.SupportStartedData
	expectEvent(t, guestA, ws.EventSupportStarted, &a)
	expectEvent(t, guestB, ws.EventSupportStarted, &b)
	assert.NotEqual(t, a.ConversationID, b.ConversationID)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: "c1", Content: "hi"})

	expectError(t, guest, "FORBIDDEN")
}

func TestSendMessageValidation(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: "c1", Content: "   "})

	expectError(t, guest, "BAD_REQUEST")
}

func TestSendMessagePersistFailureStopsFanout(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: started.ConversationID})
	drain(staff)
	drain(guest)

	fx.conversation.failMessages = true
	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "hello?"})

	expectError(t, guest, "INTERNAL_ERROR")
	expectSilence(t, staff)

	messages, err := fx.conversation.ListMessages(context.Background(), started.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestStaffMessageActivatesAndAssigns(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: started.ConversationID})
	drain(staff)
	drain(guest)

	fx.intent(staff, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "How can I help?"})

	var received ws.NewMessageData
	expectEvent(t, guest, ws.EventNewMessage, &received)
	assert.Equal(t, entity.SenderStaff, received.Message.SenderKind)

	stored, err := fx.conversation.GetByID(context.Background(), started.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversationActive, stored.Status)
	assert.Equal(t, "s1", stored.StaffID)

	// A follow-up from the shopper flags the conversation again without
	// clearing the assignment.
	drain(staff)
	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "My order is late"})
	drain(guest)
	drain(staff)

	stored, err = fx.conversation.GetByID(context.Background(), started.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversationWaiting, stored.Status)
	assert.Equal(t, "s1", stored.StaffID)
}

func TestMessageDeliveryOrderMatchesPersistence(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: started.ConversationID})
	drain(staff)
	drain(guest)

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: content})
	}

	var delivered []string
	for range contents {
		var data ws.NewMessageData
		expectEvent(t, staff, ws.EventNewMessage, &data)
		delivered = append(delivered, data.Message.Content)
	}
	assert.Equal(t, contents, delivered)

	stored, err := fx.conversation.ListMessages(context.Background(), started.ConversationID)
	require.NoError(t, err)
	var persisted []string
	for _, message := range stored {
		persisted = append(persisted, message.Content)
	}
	assert.Equal(t, contents, persisted)
}

func TestStaffJoinReplaysHistory(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "anyone there?"})
	drain(guest)

	fx.intent(staff, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: started.ConversationID})

	var history ws.ConversationHistoryData
	expectEvent(t, staff, ws.EventConversationHistory, &history)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "anyone there?", history.Messages[0].Content)

	var joined ws.StaffJoinedData
	expectEvent(t, staff, ws.EventStaffJoined, &joined)
	expectEvent(t, guest, ws.EventStaffJoined, nil)
}

func TestStaffJoinRequiresStaffRole(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: "c1"})

	expectError(t, guest, "FORBIDDEN")
}

func TestCloseConversationIsIdempotent(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentCloseConversation, ws.CloseConversationData{ConversationID: started.ConversationID})
	expectEvent(t, guest, ws.EventConversationClosed, nil)

	stored, err := fx.conversation.GetByID(context.Background(), started.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversationClosed, stored.Status)
	require.NotNil(t, stored.ClosedAt)

	// Closing again re-acks the caller without disturbing anyone else.
	fx.intent(staff, ws.IntentCloseConversation, ws.CloseConversationData{ConversationID: started.ConversationID})
	expectEvent(t, staff, ws.EventConversationClosed, nil)
	expectSilence(t, guest)
}

func TestSendToClosedConversationRejected(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	// Staff can close without joining; the guest's room membership survives
	// only until the room is dropped, so re-subscribe to simulate a stale tab.
	fx.intent(staff, ws.IntentCloseConversation, ws.CloseConversationData{ConversationID: started.ConversationID})
	drain(guest)
	fx.hub.Rooms.Subscribe(guest, ws.ConversationRoom(started.ConversationID))

	fx.intent(guest, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "too late"})

	expectError(t, guest, "CONVERSATION_CLOSED")
}

func TestRecoverSessionForKnownUser(t *testing.T) {
	fx := newFixture(customerUser("u1"))
	tab1 := fx.connect(t, "token-u1")

	fx.intent(tab1, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, tab1, ws.EventSupportStarted, &started)

	fx.intent(tab1, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "still here"})
	drain(tab1)

	reconnect := fx.connect(t, "token-u1")
	fx.intent(reconnect, ws.IntentRecoverSession, nil)

	var resumed ws.SupportStartedData
	expectEvent(t, reconnect, ws.EventSupportStarted, &resumed)
	assert.Equal(t, started.ConversationID, resumed.ConversationID)

	var history ws.ConversationHistoryData
	expectEvent(t, reconnect, ws.EventConversationHistory, &history)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "still here", history.Messages[0].Content)
}

func TestRecoverSessionByIDForGuest(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)

	reconnect := fx.connect(t, "")
	fx.intent(reconnect, ws.IntentRecoverSession, ws.RecoverSessionData{ConversationID: started.ConversationID})

	var resumed ws.SupportStartedData
	expectEvent(t, reconnect, ws.EventSupportStarted, &resumed)
	assert.Equal(t, started.ConversationID, resumed.ConversationID)
	expectEvent(t, reconnect, ws.EventConversationHistory, nil)
}

func TestRecoverSessionEnforcesOwnership(t *testing.T) {
	fx := newFixture(customerUser("u1"))
	owner := fx.connect(t, "token-u1")

	fx.intent(owner, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, owner, ws.EventSupportStarted, &started)

	stranger := fx.connect(t, "")
	fx.intent(stranger, ws.IntentRecoverSession, ws.RecoverSessionData{ConversationID: started.ConversationID})

	expectError(t, stranger, "FORBIDDEN")
}

func TestRecoverSessionWithNothingToResume(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentRecoverSession, nil)

	expectError(t, guest, "NOT_FOUND")
}

func TestRecoverClosedConversationByID(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentCloseConversation, ws.CloseConversationData{ConversationID: started.ConversationID})
	drain(guest)

	reconnect := fx.connect(t, "")
	fx.intent(reconnect, ws.IntentRecoverSession, ws.RecoverSessionData{ConversationID: started.ConversationID})

	expectError(t, reconnect, "NOT_FOUND")
}

func TestTypingExcludesSender(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, guest, ws.EventSupportStarted, &started)
	drain(staff)

	fx.intent(staff, ws.IntentStaffJoin, ws.StaffJoinData{ConversationID: started.ConversationID})
	drain(staff)
	drain(guest)

	fx.intent(guest, ws.IntentTyping, ws.TypingData{ConversationID: started.ConversationID, Typing: true})

	expectSilence(t, guest)
	var indicator ws.TypingIndicatorData
	expectEvent(t, staff, ws.EventTypingIndicator, &indicator)
	assert.True(t, indicator.Typing)
	assert.Equal(t, entity.SenderUser, indicator.SenderKind)
}

func TestListConversationsStaffOnly(t *testing.T) {
	fx := newFixture(staffUser("s1"))
	staff := fx.connect(t, "token-s1")
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentStartSupport, ws.StartSupportData{GuestName: "Dewi"})
	drain(guest)
	drain(staff)

	fx.intent(guest, ws.IntentListConversations, nil)
	expectError(t, guest, "FORBIDDEN")

	fx.intent(staff, ws.IntentListConversations, nil)
	var list ws.ConversationsListData
	expectEvent(t, staff, ws.EventConversationsList, &list)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, "Dewi", list.Conversations[0].GuestName)
}

func TestUnknownIntentAnsweredToSenderOnly(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")
	other := fx.connect(t, "")

	fx.intent(guest, "make_coffee", nil)

	expectError(t, guest, "BAD_REQUEST")
	expectSilence(t, other)
}

func TestPing(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	fx.intent(guest, ws.IntentPing, nil)

	assert.Equal(t, ws.EventPong, nextEvent(t, guest).Type)
}

func TestDisconnectForgetsRateLimiterState(t *testing.T) {
	fx := newFixture()
	guest := fx.connect(t, "")

	for i := 0; i < 6; i++ {
		fx.intent(guest, ws.IntentStartSupport, nil)
	}
	drain(guest)

	fx.hub.Unregister(guest)

	assert.Zero(t, fx.hub.ClientCount())
}

func TestGetTranscriptAuthorization(t *testing.T) {
	fx := newFixture(staffUser("s1"), customerUser("u1"), customerUser("u2"))
	owner := fx.connect(t, "token-u1")

	fx.intent(owner, ws.IntentStartSupport, nil)
	var started ws.SupportStartedData
	expectEvent(t, owner, ws.EventSupportStarted, &started)

	fx.intent(owner, ws.IntentSendMessage, ws.SendMessageData{ConversationID: started.ConversationID, Content: "hello"})
	drain(owner)

	ctx := context.Background()

	messages, err := fx.uc.GetTranscript(ctx, "u1", started.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	messages, err = fx.uc.GetTranscript(ctx, "s1", started.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = fx.uc.GetTranscript(ctx, "u2", started.ConversationID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

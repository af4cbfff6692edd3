package repository

import (
	"context"

	"lapakku/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// GetOpenByUserID returns the user's waiting or active conversation, or a
	// NOT_FOUND error when none exists.
	GetOpenByUserID(ctx context.Context, userID string) (*entity.Conversation, error)
	Update(ctx context.Context, conversation *entity.Conversation) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	// ListMessages returns the full transcript ascending by creation time.
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// ListOpen returns every non-closed conversation ordered by creation time
	// descending, each annotated with its most recent message when one exists.
	ListOpen(ctx context.Context) ([]*entity.ConversationPreview, error)
}

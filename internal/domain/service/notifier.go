package service

import (
	"context"

	"lapakku/internal/domain/entity"
)

// Notifier delivers a fire-and-forget push when a new support conversation is
// opened. Delivery failures are logged, never propagated.
type Notifier interface {
	NotifyNewConversation(ctx context.Context, conversation *entity.Conversation)
}

package firebase

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/service"
	"lapakku/pkg/logger"
)

// FCMNotifier publishes the "new conversation" push to the staff topic. Staff
// consoles subscribe to the topic out of band; delivery is best effort.
type FCMNotifier struct {
	client *messaging.Client
	topic  string
}

func NewFCMNotifier(client *messaging.Client, topic string) service.Notifier {
	return &FCMNotifier{
		client: client,
		topic:  topic,
	}
}

func (n *FCMNotifier) NotifyNewConversation(ctx context.Context, conversation *entity.Conversation) {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		requester := conversation.GuestName
		if requester == "" {
			requester = "A shopper"
		}

		_, err := n.client.Send(sendCtx, &messaging.Message{
			Topic: n.topic,
			Notification: &messaging.Notification{
				Title: "New support conversation",
				Body:  requester + " is waiting for support",
			},
			Data: map[string]string{
				"conversation_id": conversation.ID,
				"status":          conversation.Status,
			},
		})
		if err != nil {
			logger.Warn("FCM: failed to publish new-conversation push for %s: %v", conversation.ID, err)
		}
	}()
}

package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// MessageRepository persists project conversations.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	// FindByID returns the message with its sender summary joined in.
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByProject returns messages ascending by created_at with senders.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Message, error)
}

// FeedPublisher announces inserted messages on the realtime channel.
type FeedPublisher interface {
	Publish(ctx context.Context, event domain.MessageEvent) error
}

package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// MessageService loads and sends project messages.
type MessageService interface {
	Load(ctx context.Context, actor Actor, projectID string) ([]*domain.Message, error)
	Send(ctx context.Context, actor Actor, projectID, content string) (*domain.Message, error)
	// Authorize checks that actor may take part in the project conversation.
	Authorize(ctx context.Context, actor Actor, projectID string) error
}

// FeedService applies a single change-feed event: dedup, hydrate, fan out.
type FeedService interface {
	Process(ctx context.Context, event domain.MessageEvent) error
}

// FeedSubscriber hands out live message streams for a project. The returned
// cancel func must be called once the subscriber goes away.
type FeedSubscriber interface {
	Subscribe(projectID string) (<-chan *domain.Message, func())
}

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, projectID, messageID string) (bool, error)
	Mark(ctx context.Context, projectID, messageID string) error
}

// Broadcaster delivers hydrated messages to the live subscribers of a project.
type Broadcaster interface {
	Broadcast(projectID string, msg *domain.Message)
}

type feedService struct {
	messages    ports.MessageRepository
	dedup       DedupChecker
	broadcaster Broadcaster
	log         zerolog.Logger
}

// NewFeedService returns a FeedService implementation.
func NewFeedService(messages ports.MessageRepository, dedup DedupChecker, broadcaster Broadcaster, log zerolog.Logger) ports.FeedService {
	return &feedService{messages: messages, dedup: dedup, broadcaster: broadcaster, log: log}
}

// Process deduplicates a message event, fetches the full row with its
// sender and fans it out to subscribers.
func (s *feedService) Process(ctx context.Context, ev domain.MessageEvent) error {
	// 1. Idempotency check. A broken dedup store must not stall the feed.
	isDup, err := s.dedup.IsDuplicate(ctx, ev.ProjectID, ev.MessageID)
	if err != nil {
		s.log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("message_id", ev.MessageID).Msg("duplicate feed event skipped")
		return nil
	}

	// 2. Hydrate.
	msg, err := s.messages.FindByID(ctx, ev.MessageID)
	if err != nil {
		return fmt.Errorf("process feed event: %w", err)
	}
	if msg.ProjectID != ev.ProjectID {
		return fmt.Errorf("process feed event: message %s belongs to project %s", msg.ProjectID, ev.ProjectID)
	}

	// 3. Mark before delivery so a redelivered event is dropped.
	if err := s.dedup.Mark(ctx, ev.ProjectID, ev.MessageID); err != nil {
		s.log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("failed to set dedup key")
	}

	// 4. Fan out.
	s.broadcaster.Broadcast(ev.ProjectID, msg)
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// MessageService handles the per-project conversation.
type MessageService struct {
	messages  ports.MessageRepository
	profiles  ports.ProfileRepository
	publisher ports.FeedPublisher
	access    projectAccess
	log       zerolog.Logger
}

func NewMessageService(
	messages ports.MessageRepository,
	profiles ports.ProfileRepository,
	projects ports.ProjectRepository,
	proposals ports.ProposalRepository,
	publisher ports.FeedPublisher,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{
		messages:  messages,
		profiles:  profiles,
		publisher: publisher,
		access:    projectAccess{projects: projects, proposals: proposals},
		log:       log,
	}
}

func (s *MessageService) Authorize(ctx context.Context, actor ports.Actor, projectID string) error {
	_, err := s.access.participant(ctx, actor, projectID)
	return err
}

// Load returns the whole conversation, oldest first.
func (s *MessageService) Load(ctx context.Context, actor ports.Actor, projectID string) ([]*domain.Message, error) {
	if err := s.Authorize(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return s.messages.ListByProject(ctx, projectID)
}

// Send appends a message and announces it on the change feed. A failed
// announcement is logged; the message is already stored and shows up on
// the next Load.
func (s *MessageService) Send(ctx context.Context, actor ports.Actor, projectID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if err := s.Authorize(ctx, actor, projectID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		SenderID:  actor.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if sender, err := s.profiles.FindByID(ctx, actor.ID); err == nil {
		msg.Sender = &domain.ProfileSummary{ID: sender.ID, FullName: sender.FullName, Role: sender.Role}
	}

	event := domain.MessageEvent{ProjectID: projectID, MessageID: msg.ID, CreatedAt: msg.CreatedAt}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to publish message event")
	}

	s.log.Debug().Str("message_id", msg.ID).Str("project_id", projectID).Msg("message sent")
	return msg, nil
}

package ports

import (
	"context"
	"time"

	"github.com/obralink/marketplace/internal/core/domain"
)

// ProposalRepository defines persistence operations for proposals.
type ProposalRepository interface {
	Insert(ctx context.Context, p *domain.Proposal) error
	// Replace overwrites bid fields and status of an existing proposal.
	Replace(ctx context.Context, p *domain.Proposal) error
	FindByID(ctx context.Context, id string) (*domain.Proposal, error)
	FindByProjectAndEngineer(ctx context.Context, projectID, engineerID string) (*domain.Proposal, error)
	// ListByProject returns proposals with the engineer summary, newest first.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Proposal, error)
	ListByEngineer(ctx context.Context, engineerID string) ([]*domain.Proposal, error)
	// TransitionStatus sets the status to `to` only when the current status
	// is one of from. It returns ErrInvalidTransition otherwise.
	TransitionStatus(ctx context.Context, id string, to domain.ProposalStatus, from ...domain.ProposalStatus) error
	// RejectSiblings sets every proposal of projectID except keepID to rejected.
	RejectSiblings(ctx context.Context, projectID, keepID string) (int64, error)
}

// AcceptanceRepository persists accept-proposal intents.
type AcceptanceRepository interface {
	Save(ctx context.Context, intent *domain.AcceptanceIntent) error
	MarkDone(ctx context.Context, id string) error
	// IncrementAttempts bumps the attempt counter of a pending intent.
	IncrementAttempts(ctx context.Context, id string) error
	// SupersedePending closes every pending intent of projectID except keepID.
	SupersedePending(ctx context.Context, projectID, keepID string) (int64, error)
	// ListPending returns pending intents last touched before olderThan.
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.AcceptanceIntent, error)
}

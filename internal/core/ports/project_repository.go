package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	// FindByID retrieves a project with its client summary joined in.
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	FindByIdempotencyKey(ctx context.Context, clientID, key string) (*domain.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Project, error)
	// ListOpen returns open projects newest first, at most limit rows.
	ListOpen(ctx context.Context, limit int) ([]*domain.Project, error)
	// TransitionStatus sets the status to `to` only when the current status
	// is one of from. It returns ErrInvalidTransition otherwise.
	TransitionStatus(ctx context.Context, id string, to domain.ProjectStatus, from ...domain.ProjectStatus) error
}

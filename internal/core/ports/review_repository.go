package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// ReviewRepository persists append-only reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	// ListByReviewee returns reviews about revieweeID with the reviewer joined, newest first.
	ListByReviewee(ctx context.Context, revieweeID string) ([]*domain.Review, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Review, error)
}

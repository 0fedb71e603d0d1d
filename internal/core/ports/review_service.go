package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// SubmitReviewInput carries a review form.
type SubmitReviewInput struct {
	ProjectID    string
	ReviewerID   string
	ReviewerRole string
	RevieweeID   string
	Rating       int
	Comment      string
}

// ReviewList is a reviewee's reviews with the derived rating.
type ReviewList struct {
	Reviews []*domain.Review
	Rating  domain.RatingSummary
}

type ReviewService interface {
	SubmitReview(ctx context.Context, in SubmitReviewInput) (*domain.Review, error)
	ListForReviewee(ctx context.Context, revieweeID string) (*ReviewList, error)
	ListForProject(ctx context.Context, projectID string) ([]*domain.Review, error)
}

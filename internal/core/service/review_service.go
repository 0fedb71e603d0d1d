package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ReviewService records reviews and derives rating summaries.
type ReviewService struct {
	reviews ports.ReviewRepository
	access  projectAccess
	log     zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, projects ports.ProjectRepository, proposals ports.ProposalRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		access:  projectAccess{projects: projects, proposals: proposals},
		log:     log,
	}
}

// SubmitReview records a review. The reviewer must take part in the
// project; the project status is not checked, so reviews are accepted at
// any stage of the lifecycle.
func (s *ReviewService) SubmitReview(ctx context.Context, in ports.SubmitReviewInput) (*domain.Review, error) {
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}
	comment := strings.TrimSpace(in.Comment)
	if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
		return nil, domain.ErrCommentTooLong
	}
	if in.RevieweeID == "" {
		return nil, fmt.Errorf("%w: reviewee is required", domain.ErrValidation)
	}
	if in.ReviewerID == in.RevieweeID {
		return nil, domain.ErrSelfReview
	}

	actor := ports.Actor{ID: in.ReviewerID, Role: in.ReviewerRole}
	if _, err := s.access.participant(ctx, actor, in.ProjectID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:         uuid.NewString(),
		ProjectID:  in.ProjectID,
		ReviewerID: in.ReviewerID,
		RevieweeID: in.RevieweeID,
		Rating:     in.Rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	s.log.Info().Str("review_id", review.ID).Str("reviewee_id", in.RevieweeID).Int("rating", in.Rating).Msg("review submitted")
	return review, nil
}

// ListForReviewee returns the reviews about a profile with its average.
func (s *ReviewService) ListForReviewee(ctx context.Context, revieweeID string) (*ports.ReviewList, error) {
	reviews, err := s.reviews.ListByReviewee(ctx, revieweeID)
	if err != nil {
		return nil, err
	}
	return &ports.ReviewList{Reviews: reviews, Rating: domain.SummarizeRatings(reviews)}, nil
}

func (s *ReviewService) ListForProject(ctx context.Context, projectID string) ([]*domain.Review, error) {
	return s.reviews.ListByProject(ctx, projectID)
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/obralink/marketplace/internal/core/domain"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *rv
	doc.Reviewer = nil
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*domain.Review, error) {
	return r.query(ctx, bson.M{"reviewee_id": revieweeID})
}

func (r *ReviewRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Review, error) {
	return r.query(ctx, bson.M{"project_id": projectID})
}

func (r *ReviewRepository) query(ctx context.Context, match bson.M) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stages := bson.A{
		bson.M{"$match": match},
		bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline(stages, joinProfile("reviewer_id", "reviewer")))
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	var out []*domain.Review
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return out, nil
}

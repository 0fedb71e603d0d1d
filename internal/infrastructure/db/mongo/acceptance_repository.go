package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/obralink/marketplace/internal/core/domain"
)

// AcceptanceRepository persists accept-proposal intents.
type AcceptanceRepository struct {
	col *mongo.Collection
}

func NewAcceptanceRepository(db *mongo.Database) *AcceptanceRepository {
	return &AcceptanceRepository{col: db.Collection(acceptancesCollection)}
}

func (r *AcceptanceRepository) Save(ctx context.Context, in *domain.AcceptanceIntent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, in)
	return err
}

func (r *AcceptanceRepository) MarkDone(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"state": domain.AcceptanceDone, "updated_at": time.Now().UTC()}})
}

func (r *AcceptanceRepository) IncrementAttempts(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *AcceptanceRepository) SupersedePending(ctx context.Context, projectID, keepID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"project_id": projectID, "_id": bson.M{"$ne": keepID}, "state": domain.AcceptancePending},
		bson.M{"$set": bson.M{"state": domain.AcceptanceSuperseded, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("supersede acceptance intents: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *AcceptanceRepository) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("update acceptance intent: %w", err)
	}
	return nil
}

// ListPending returns the oldest pending intents first.
func (r *AcceptanceRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.AcceptanceIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{
		"state":      domain.AcceptancePending,
		"updated_at": bson.M{"$lt": olderThan},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("list pending intents: %w", err)
	}
	var out []*domain.AcceptanceIntent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode intents: %w", err)
	}
	return out, nil
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/obralink/marketplace/internal/core/domain"
)

// MessageRepository stores the append-only project conversations.
type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(messagesCollection)}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *m
	doc.Sender = nil
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	rows, err := r.query(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrMessageNotFound
	}
	return rows[0], nil
}

func (r *MessageRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Message, error) {
	return r.query(ctx, bson.M{"project_id": projectID})
}

func (r *MessageRepository) query(ctx context.Context, match bson.M) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stages := bson.A{
		bson.M{"$match": match},
		bson.M{"$sort": bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline(stages, joinProfile("sender_id", "sender")))
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	var out []*domain.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

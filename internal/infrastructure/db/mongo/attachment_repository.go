package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/obralink/marketplace/internal/core/domain"
)

// AttachmentRepository stores metadata of files held in the blob store.
type AttachmentRepository struct {
	col *mongo.Collection
}

func NewAttachmentRepository(db *mongo.Database) *AttachmentRepository {
	return &AttachmentRepository{col: db.Collection(attachmentsCollection)}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *a
	doc.UploaderName = ""
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Attachment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stages := bson.A{
		bson.M{"$match": bson.M{"project_id": projectID}},
		bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}}},
	}
	name := bson.A{bson.M{"$set": bson.M{"uploader_name": "$uploader.full_name"}}}
	cur, err := r.col.Aggregate(ctx, pipeline(stages, joinProfile("uploader_id", "uploader"), name))
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	var out []*domain.Attachment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	return out, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/obralink/marketplace/internal/core/domain"
)

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(projectsCollection)}
}

// projectRow is a project with its client joined in.
type projectRow struct {
	domain.Project `bson:",inline"`
	Client         *domain.ProfileSummary `bson:"client,omitempty"`
}

func (row projectRow) toDomain() *domain.Project {
	p := row.Project
	p.Client = row.Client
	return &p
}

// Create inserts a new project document. The partial unique
// (client_id, idempotency_key) index turns a concurrent replay into
// ErrDuplicateProject.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateProject
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	rows, err := r.aggregate(ctx, bson.M{"_id": id}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return rows[0], nil
}

// FindByIdempotencyKey retrieves the project a client created with key.
func (r *ProjectRepository) FindByIdempotencyKey(ctx context.Context, clientID, key string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	err := r.col.FindOne(ctx, bson.M{"client_id": clientID, "idempotency_key": key}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Project, error) {
	return r.aggregate(ctx, bson.M{"client_id": clientID}, bson.D{{Key: "created_at", Value: -1}}, 0)
}

func (r *ProjectRepository) ListOpen(ctx context.Context, limit int) ([]*domain.Project, error) {
	filter := bson.M{"status": bson.M{"$in": bson.A{domain.ProjectOpen, domain.ProjectPending}}}
	return r.aggregate(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, limit)
}

// TransitionStatus is a compare-and-set on the status field.
func (r *ProjectRepository) TransitionStatus(ctx context.Context, id string, to domain.ProjectStatus, from ...domain.ProjectStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": bson.M{"$in": from}}, bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *ProjectRepository) aggregate(ctx context.Context, match bson.M, sort bson.D, limit int) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stages := bson.A{bson.M{"$match": match}}
	if sort != nil {
		stages = append(stages, bson.M{"$sort": sort})
	}
	if limit > 0 {
		stages = append(stages, bson.M{"$limit": limit})
	}

	cur, err := r.col.Aggregate(ctx, pipeline(stages, joinProfile("client_id", "client")))
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	var rows []projectRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	out := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

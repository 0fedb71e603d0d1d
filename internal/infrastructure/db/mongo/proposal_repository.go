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

type ProposalRepository struct {
	col *mongo.Collection
}

func NewProposalRepository(db *mongo.Database) *ProposalRepository {
	return &ProposalRepository{col: db.Collection(proposalsCollection)}
}

type proposalRow struct {
	domain.Proposal `bson:",inline"`
	Engineer        *domain.ProfileSummary `bson:"engineer,omitempty"`
}

// Insert stores a new proposal. The unique (project_id, engineer_id) index
// turns a second insert for the same pair into ErrDuplicate.
func (r *ProposalRepository) Insert(ctx context.Context, p *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) Replace(ctx context.Context, p *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"bid_amount": p.BidAmount,
		"eta_days":   p.EtaDays,
		"details":    p.Details,
		"status":     p.Status,
		"updated_at": p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("replace proposal: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProposalRepository) FindByProjectAndEngineer(ctx context.Context, projectID, engineerID string) (*domain.Proposal, error) {
	return r.findOne(ctx, bson.M{"project_id": projectID, "engineer_id": engineerID})
}

func (r *ProposalRepository) findOne(ctx context.Context, filter bson.M) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Proposal
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Proposal, error) {
	return r.list(ctx, bson.M{"project_id": projectID})
}

func (r *ProposalRepository) ListByEngineer(ctx context.Context, engineerID string) ([]*domain.Proposal, error) {
	return r.list(ctx, bson.M{"engineer_id": engineerID})
}

func (r *ProposalRepository) list(ctx context.Context, match bson.M) ([]*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stages := bson.A{
		bson.M{"$match": match},
		bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline(stages, joinProfile("engineer_id", "engineer")))
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	var rows []proposalRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode proposals: %w", err)
	}
	out := make([]*domain.Proposal, 0, len(rows))
	for _, row := range rows {
		p := row.Proposal
		p.Engineer = row.Engineer
		out = append(out, &p)
	}
	return out, nil
}

// TransitionStatus is a compare-and-set on the status field. A missing
// proposal and a proposal in another state are told apart by a second read.
func (r *ProposalRepository) TransitionStatus(ctx context.Context, id string, to domain.ProposalStatus, from ...domain.ProposalStatus) error {
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
		if _, err := r.findOne(ctx, bson.M{"_id": id}); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *ProposalRepository) RejectSiblings(ctx context.Context, projectID, keepID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"project_id": projectID, "_id": bson.M{"$ne": keepID}, "status": bson.M{"$ne": domain.ProposalRejected}},
		bson.M{"$set": bson.M{"status": domain.ProposalRejected, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("reject sibling proposals: %w", err)
	}
	return res.ModifiedCount, nil
}

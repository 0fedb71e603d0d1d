package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// SubmitProposalInput carries an engineer's bid.
type SubmitProposalInput struct {
	ProjectID  string
	EngineerID string
	BidAmount  float64
	EtaDays    int
	Details    string
}

// SubmitProposalResult is returned by SubmitProposal.
type SubmitProposalResult struct {
	Proposal *domain.Proposal
	// Updated is true when an existing proposal was overwritten.
	Updated bool
}

// ProposalService defines the proposal side of the workflow.
type ProposalService interface {
	SubmitProposal(ctx context.Context, in SubmitProposalInput) (*SubmitProposalResult, error)
	GetProposal(ctx context.Context, actor Actor, id string) (*domain.Proposal, error)
	ListMyProposals(ctx context.Context, actor Actor) ([]*domain.Proposal, error)
	AcceptProposal(ctx context.Context, actor Actor, id string) (*domain.Proposal, error)
	RejectProposal(ctx context.Context, actor Actor, id string) (*domain.Proposal, error)
	NegotiateProposal(ctx context.Context, actor Actor, id string) (*domain.Proposal, error)
	WithdrawProposal(ctx context.Context, actor Actor, id string) (*domain.Proposal, error)
}

// Reconciler resumes accept-proposal runs that did not finish.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

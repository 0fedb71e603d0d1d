package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role string
}

// CreateProjectInput carries the new-project form.
type CreateProjectInput struct {
	ClientID       string
	Title          string
	Description    string
	Category       string
	BudgetEstimate *float64
	EtaDays        *int
	Location       string
	IdempotencyKey string
}

// ProjectResult is returned by CreateProject.
type ProjectResult struct {
	Project *domain.Project
	// AlreadyExisted is true when the Idempotency-Key matched an existing project.
	AlreadyExisted bool
}

// ProjectDetail is the project view with its proposals, visible to the owner.
type ProjectDetail struct {
	Project   *domain.Project
	Proposals []*domain.Proposal
}

// ProjectService defines the project side of the workflow.
type ProjectService interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*ProjectResult, error)
	GetProject(ctx context.Context, actor Actor, id string) (*ProjectDetail, error)
	ListMyProjects(ctx context.Context, actor Actor) ([]*domain.Project, error)
	ListOpenProjects(ctx context.Context, limit int) ([]*domain.Project, error)
	CompleteProject(ctx context.Context, actor Actor, id string) (*domain.Project, error)
	CancelProject(ctx context.Context, actor Actor, id string) (*domain.Project, error)
}

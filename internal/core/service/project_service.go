package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

const defaultOpenProjectsLimit = 10

type ProjectService struct {
	projects  ports.ProjectRepository
	proposals ports.ProposalRepository
	access    projectAccess
	logger    zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, proposals ports.ProposalRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects:  projects,
		proposals: proposals,
		access:    projectAccess{projects: projects, proposals: proposals},
		logger:    logger,
	}
}

// CreateProject posts a new open project. If an idempotency key is provided
// and already seen for this client, the original project is returned
// without side effects.
func (s *ProjectService) CreateProject(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectResult, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.projects.FindByIdempotencyKey(ctx, in.ClientID, in.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("project_id", existing.ID).Msg("idempotent replay")
			return &ports.ProjectResult{Project: existing, AlreadyExisted: true}, nil
		}
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if title == "" || description == "" || category == "" {
		return nil, fmt.Errorf("%w: title, description and category are required", domain.ErrValidation)
	}
	if in.BudgetEstimate != nil && *in.BudgetEstimate <= 0 {
		return nil, fmt.Errorf("%w: budget estimate must be greater than zero", domain.ErrValidation)
	}
	if in.EtaDays != nil && *in.EtaDays <= 0 {
		return nil, fmt.Errorf("%w: eta days must be greater than zero", domain.ErrValidation)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:             uuid.NewString(),
		ClientID:       in.ClientID,
		Title:          title,
		Description:    description,
		Category:       category,
		BudgetEstimate: in.BudgetEstimate,
		EtaDays:        in.EtaDays,
		Location:       strings.TrimSpace(in.Location),
		Status:         domain.ProjectOpen,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, domain.ErrDuplicateProject) && in.IdempotencyKey != "" {
			// A concurrent request with the same key won the insert.
			existing, findErr := s.projects.FindByIdempotencyKey(ctx, in.ClientID, in.IdempotencyKey)
			if findErr == nil {
				s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("project_id", existing.ID).Msg("idempotent replay after insert race")
				return &ports.ProjectResult{Project: existing, AlreadyExisted: true}, nil
			}
			err = fmt.Errorf("%w: %w", err, findErr)
		}
		s.logger.Error().Err(err).Msg("failed to create project")
		return nil, err
	}

	s.logger.Info().Str("project_id", project.ID).Str("client_id", in.ClientID).Msg("project created")
	return &ports.ProjectResult{Project: project}, nil
}

// GetProject returns a project. The owning client also receives every
// proposal; an engineer only sees its own.
func (s *ProjectService) GetProject(ctx context.Context, actor ports.Actor, id string) (*ports.ProjectDetail, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.ProjectDetail{Project: project}
	switch {
	case actor.Role == domain.RoleClient && project.ClientID == actor.ID:
		proposals, err := s.proposals.ListByProject(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list proposals: %w", err)
		}
		detail.Proposals = proposals
	case actor.Role == domain.RoleEngineer:
		own, err := s.proposals.FindByProjectAndEngineer(ctx, id, actor.ID)
		if err == nil {
			detail.Proposals = []*domain.Proposal{own}
		} else if !project.Status.IsOpen() {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}
	return detail, nil
}

func (s *ProjectService) ListMyProjects(ctx context.Context, actor ports.Actor) ([]*domain.Project, error) {
	if actor.Role != domain.RoleClient {
		return nil, domain.ErrForbidden
	}
	return s.projects.ListByClient(ctx, actor.ID)
}

func (s *ProjectService) ListOpenProjects(ctx context.Context, limit int) ([]*domain.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultOpenProjectsLimit
	}
	return s.projects.ListOpen(ctx, limit)
}

// CompleteProject moves an in-progress project to completed.
func (s *ProjectService) CompleteProject(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	return s.transition(ctx, actor, id, domain.ProjectCompleted)
}

// CancelProject cancels a project that has not been completed.
func (s *ProjectService) CancelProject(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	return s.transition(ctx, actor, id, domain.ProjectCancelled)
}

func (s *ProjectService) transition(ctx context.Context, actor ports.Actor, id string, to domain.ProjectStatus) (*domain.Project, error) {
	project, err := s.access.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !project.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, project.Status, to)
	}
	if err := s.projects.TransitionStatus(ctx, id, to, project.Status); err != nil {
		return nil, fmt.Errorf("project %s: %w", to, err)
	}

	project.Status = to
	project.UpdatedAt = time.Now().UTC()
	s.logger.Info().Str("project_id", id).Str("status", string(to)).Msg("project status changed")
	return project, nil
}

package service

import (
	"context"
	"errors"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// projectAccess answers who may see or act on a project: its client, and
// engineers that have a proposal on it.
type projectAccess struct {
	projects  ports.ProjectRepository
	proposals ports.ProposalRepository
}

// ownedProject loads a project and checks actor is its client.
func (a projectAccess) ownedProject(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	project, err := a.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleClient || project.ClientID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// participant loads a project and checks actor takes part in it.
func (a projectAccess) participant(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	project, err := a.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleClient:
		if project.ClientID == actor.ID {
			return project, nil
		}
	case domain.RoleEngineer:
		_, err := a.proposals.FindByProjectAndEngineer(ctx, id, actor.ID)
		if err == nil {
			return project, nil
		}
		if !errors.Is(err, domain.ErrProposalNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrForbidden
}

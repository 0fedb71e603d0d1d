package ports

import (
	"context"

	"github.com/obralink/marketplace/internal/core/domain"
)

// ProfileRepository defines persistence for identities and their profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// ListEngineers returns the complete engineer roster, newest first.
	ListEngineers(ctx context.Context) ([]*domain.Profile, error)
}

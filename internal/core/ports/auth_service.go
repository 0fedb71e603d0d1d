package ports

import (
	"context"
	"time"

	"github.com/obralink/marketplace/internal/core/domain"
)

// SignUpInput carries the registration form.
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	FullName        string
}

// TokenClaims is the identity extracted from a verified token.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// TokenRevoker records signed-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.Profile, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.Profile, error)
	SignOut(ctx context.Context, claims TokenClaims) error
}

// ProfileService exposes profile reads and owner-only updates.
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, actorID, id string, patch domain.ProfilePatch) (*domain.Profile, error)
	SearchEngineers(ctx context.Context, filter domain.EngineerFilter) ([]EngineerListing, error)
}

// EngineerListing is an engineer profile together with its derived rating.
type EngineerListing struct {
	Profile *domain.Profile
	Rating  domain.RatingSummary
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ProfileService reads profiles, applies owner-only updates and serves the
// engineer directory.
type ProfileService struct {
	profiles ports.ProfileRepository
	reviews  ports.ReviewRepository
	log      zerolog.Logger
}

func NewProfileService(profiles ports.ProfileRepository, reviews ports.ReviewRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, reviews: reviews, log: log}
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profiles.FindByID(ctx, id)
}

// UpdateProfile applies patch to the profile id. Only the owner may update
// it, and engineer attributes are rejected on client profiles.
func (s *ProfileService) UpdateProfile(ctx context.Context, actorID, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if actorID != id {
		return nil, domain.ErrForbidden
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.HasEngineerFields() && !profile.IsEngineer() {
		return nil, fmt.Errorf("%w: engineer attributes on a client profile", domain.ErrValidation)
	}
	if patch.Availability != nil && !patch.Availability.Valid() {
		return nil, fmt.Errorf("%w: availability must be available, busy or unavailable", domain.ErrValidation)
	}
	if patch.HourlyRate != nil && *patch.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourly rate cannot be negative", domain.ErrValidation)
	}
	if patch.ExperienceYears != nil && *patch.ExperienceYears < 0 {
		return nil, fmt.Errorf("%w: experience years cannot be negative", domain.ErrValidation)
	}

	patch.Apply(profile)
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("profile updated")
	return profile, nil
}

// SearchEngineers loads the whole engineer roster once and filters it in
// memory. Each listing carries the engineer's derived rating.
func (s *ProfileService) SearchEngineers(ctx context.Context, filter domain.EngineerFilter) ([]ports.EngineerListing, error) {
	roster, err := s.profiles.ListEngineers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list engineers: %w", err)
	}

	matched := domain.FilterEngineers(roster, filter)
	out := make([]ports.EngineerListing, 0, len(matched))
	for _, p := range matched {
		reviews, err := s.reviews.ListByReviewee(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list reviews for %s: %w", p.ID, err)
		}
		out = append(out, ports.EngineerListing{Profile: p, Rating: domain.SummarizeRatings(reviews)})
	}
	return out, nil
}

package domain

import (
	"errors"
	"time"
)

const (
	RoleClient   = "client"
	RoleEngineer = "engineer"
)

// Availability is an engineer's self-reported capacity.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityBusy        Availability = "busy"
	AvailabilityUnavailable Availability = "unavailable"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("role must be client or engineer")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrTokenRevoked       = errors.New("token revoked")
)

// ValidRole reports whether role is one of the marketplace roles.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleEngineer
}

// Valid reports whether a is part of the availability vocabulary.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return true
	}
	return false
}

// Profile is the account record of a client or an engineer. The identity
// fields (email, password hash) live on the same document.
type Profile struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	FullName     string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Company      string    `json:"company,omitempty" bson:"company,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`

	// Engineer-only attributes.
	Specialty       string       `json:"specialty,omitempty" bson:"specialty,omitempty"`
	ExperienceYears *int         `json:"experience_years,omitempty" bson:"experience_years,omitempty"`
	HourlyRate      *float64     `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty"`
	Availability    Availability `json:"availability,omitempty" bson:"availability,omitempty"`
	PortfolioURL    string       `json:"portfolio_url,omitempty" bson:"portfolio_url,omitempty"`
}

// IsEngineer reports whether the profile belongs to an engineer.
func (p *Profile) IsEngineer() bool { return p.Role == RoleEngineer }

// ProfileSummary is the embedded view of a profile joined onto other rows.
type ProfileSummary struct {
	ID       string `json:"id" bson:"_id"`
	FullName string `json:"full_name" bson:"full_name"`
	Role     string `json:"role" bson:"role"`
}

// ProfilePatch carries a partial profile update. Nil fields are left as is.
type ProfilePatch struct {
	FullName        *string
	Phone           *string
	Company         *string
	AvatarURL       *string
	Specialty       *string
	ExperienceYears *int
	HourlyRate      *float64
	Availability    *Availability
	PortfolioURL    *string
}

// HasEngineerFields reports whether the patch touches engineer-only attributes.
func (p ProfilePatch) HasEngineerFields() bool {
	return p.Specialty != nil || p.ExperienceYears != nil || p.HourlyRate != nil ||
		p.Availability != nil || p.PortfolioURL != nil
}

// Apply copies the non-nil fields of the patch onto profile.
func (p ProfilePatch) Apply(profile *Profile) {
	if p.FullName != nil {
		profile.FullName = *p.FullName
	}
	if p.Phone != nil {
		profile.Phone = *p.Phone
	}
	if p.Company != nil {
		profile.Company = *p.Company
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.Specialty != nil {
		profile.Specialty = *p.Specialty
	}
	if p.ExperienceYears != nil {
		v := *p.ExperienceYears
		profile.ExperienceYears = &v
	}
	if p.HourlyRate != nil {
		v := *p.HourlyRate
		profile.HourlyRate = &v
	}
	if p.Availability != nil {
		profile.Availability = *p.Availability
	}
	if p.PortfolioURL != nil {
		profile.PortfolioURL = *p.PortfolioURL
	}
}

package handler

import (
	"github.com/obralink/marketplace/internal/core/domain"
)

// --- Requests ---

type signUpRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Role            string `json:"role"             validate:"required"`
	FullName        string `json:"full_name"        validate:"max=120"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName        *string  `json:"full_name"        validate:"omitempty,max=120"`
	Phone           *string  `json:"phone"            validate:"omitempty,max=40"`
	Company         *string  `json:"company"          validate:"omitempty,max=120"`
	AvatarURL       *string  `json:"avatar_url"       validate:"omitempty,url"`
	Specialty       *string  `json:"specialty"        validate:"omitempty,max=80"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,gte=0"`
	HourlyRate      *float64 `json:"hourly_rate"      validate:"omitempty,gte=0"`
	Availability    *string  `json:"availability"`
	PortfolioURL    *string  `json:"portfolio_url"    validate:"omitempty,url"`
}

type createProjectRequest struct {
	Title          string   `json:"title"           validate:"required,max=200"`
	Description    string   `json:"description"     validate:"required"`
	Category       string   `json:"category"        validate:"required"`
	BudgetEstimate *float64 `json:"budget_estimate" validate:"omitempty,gt=0"`
	EtaDays        *int     `json:"eta_days"        validate:"omitempty,gt=0"`
	Location       string   `json:"location"        validate:"max=200"`
}

type submitProposalRequest struct {
	BidAmount float64 `json:"bid_amount" validate:"gt=0"`
	EtaDays   int     `json:"eta_days"   validate:"gt=0"`
	Details   string  `json:"details"`
}

type submitReviewRequest struct {
	RevieweeID string `json:"reviewee_id" validate:"required"`
	Rating     int    `json:"rating"      validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment"     validate:"max=500"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// --- Responses ---

type ratingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Label   string  `json:"label,omitempty"`
}

type profileResponse struct {
	*domain.Profile
	Rating *ratingResponse `json:"rating,omitempty"`
}

type authResponse struct {
	Token string           `json:"token,omitempty"`
	User  *profileResponse `json:"user,omitempty"`
}

type projectLinks struct {
	Self      string `json:"self"`
	Proposals string `json:"proposals"`
	Messages  string `json:"messages"`
	Files     string `json:"files"`
}

type projectResponse struct {
	*domain.Project
	Links projectLinks `json:"_links"`
}

type projectDetailResponse struct {
	projectResponse
	Proposals []*domain.Proposal `json:"proposals"`
}

type proposalResponse struct {
	*domain.Proposal
	Updated bool `json:"updated,omitempty"`
}

type attachmentResponse struct {
	*domain.Attachment
	Kind      string `json:"kind"`
	SizeLabel string `json:"size_label"`
}

type reviewListResponse struct {
	Reviews []*domain.Review `json:"reviews"`
	Rating  ratingResponse   `json:"rating"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

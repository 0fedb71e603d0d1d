package handler

import (
	"math"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// --- Request → Service input ---

func toSignUpInput(r signUpRequest) ports.SignUpInput {
	return ports.SignUpInput{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		Role:            r.Role,
		FullName:        r.FullName,
	}
}

func toProfilePatch(r updateProfileRequest) domain.ProfilePatch {
	patch := domain.ProfilePatch{
		FullName:        r.FullName,
		Phone:           r.Phone,
		Company:         r.Company,
		AvatarURL:       r.AvatarURL,
		Specialty:       r.Specialty,
		ExperienceYears: r.ExperienceYears,
		HourlyRate:      r.HourlyRate,
		PortfolioURL:    r.PortfolioURL,
	}
	if r.Availability != nil {
		a := domain.Availability(*r.Availability)
		patch.Availability = &a
	}
	return patch
}

func toCreateProjectInput(r createProjectRequest, clientID, idempotencyKey string) ports.CreateProjectInput {
	return ports.CreateProjectInput{
		ClientID:       clientID,
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		BudgetEstimate: r.BudgetEstimate,
		EtaDays:        r.EtaDays,
		Location:       r.Location,
		IdempotencyKey: idempotencyKey,
	}
}

// --- Service result → HTTP response ---

func toRatingResponse(s domain.RatingSummary) ratingResponse {
	r := ratingResponse{Average: s.Average, Count: s.Count}
	if s.HasRating() {
		r.Label = domain.RatingLabel(int(math.Round(s.Average)))
	}
	return r
}

func toProfileResponse(p *domain.Profile) *profileResponse {
	return &profileResponse{Profile: p}
}

func toEngineerResponses(listings []ports.EngineerListing) []*profileResponse {
	out := make([]*profileResponse, 0, len(listings))
	for _, l := range listings {
		rating := toRatingResponse(l.Rating)
		out = append(out, &profileResponse{Profile: l.Profile, Rating: &rating})
	}
	return out
}

func toProjectResponse(p *domain.Project) projectResponse {
	self := "/v1/projects/" + p.ID
	return projectResponse{
		Project: p,
		Links: projectLinks{
			Self:      self,
			Proposals: self + "/proposals",
			Messages:  self + "/messages",
			Files:     self + "/files",
		},
	}
}

func toProjectResponses(projects []*domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

func toProjectDetailResponse(d *ports.ProjectDetail) projectDetailResponse {
	proposals := d.Proposals
	if proposals == nil {
		proposals = []*domain.Proposal{}
	}
	return projectDetailResponse{
		projectResponse: toProjectResponse(d.Project),
		Proposals:       proposals,
	}
}

func toAttachmentResponse(a *domain.Attachment) attachmentResponse {
	return attachmentResponse{
		Attachment: a,
		Kind:       domain.FileKind(a.FileName),
		SizeLabel:  domain.FormatFileSize(a.Size),
	}
}

func toAttachmentResponses(items []*domain.Attachment) []attachmentResponse {
	out := make([]attachmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAttachmentResponse(a))
	}
	return out
}

func toReviewListResponse(l *ports.ReviewList) reviewListResponse {
	reviews := l.Reviews
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviewListResponse{Reviews: reviews, Rating: toRatingResponse(l.Rating)}
}

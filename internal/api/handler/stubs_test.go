package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/middleware"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// newContext builds an echo context with the validator installed and, when
// actor is non-nil, the claims the Auth middleware would have set.
func newContext(t *testing.T, method, target string, body io.Reader, actor *ports.Actor) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.CtxUserID, actor.ID)
		c.Set(middleware.CtxRole, actor.Role)
	}
	return c, rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

var (
	client   = &ports.Actor{ID: "client-1", Role: domain.RoleClient}
	engineer = &ports.Actor{ID: "eng-1", Role: domain.RoleEngineer}
)

type stubAuthService struct {
	signUpFn  func(ctx context.Context, in ports.SignUpInput) (*domain.Profile, error)
	signInFn  func(ctx context.Context, email, password string) (string, *domain.Profile, error)
	signOutFn func(ctx context.Context, claims ports.TokenClaims) error
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.Profile, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignOut(ctx context.Context, claims ports.TokenClaims) error {
	return s.signOutFn(ctx, claims)
}

type stubProfileService struct {
	getFn    func(ctx context.Context, id string) (*domain.Profile, error)
	updateFn func(ctx context.Context, actorID, id string, patch domain.ProfilePatch) (*domain.Profile, error)
	searchFn func(ctx context.Context, f domain.EngineerFilter) ([]ports.EngineerListing, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.getFn(ctx, id)
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, actorID, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	return s.updateFn(ctx, actorID, id, patch)
}

func (s *stubProfileService) SearchEngineers(ctx context.Context, f domain.EngineerFilter) ([]ports.EngineerListing, error) {
	return s.searchFn(ctx, f)
}

type stubProjectService struct {
	createFn   func(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectResult, error)
	getFn      func(ctx context.Context, actor ports.Actor, id string) (*ports.ProjectDetail, error)
	openFn     func(ctx context.Context, limit int) ([]*domain.Project, error)
	transition func(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error)
}

func (s *stubProjectService) CreateProject(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubProjectService) GetProject(ctx context.Context, actor ports.Actor, id string) (*ports.ProjectDetail, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubProjectService) ListMyProjects(context.Context, ports.Actor) ([]*domain.Project, error) {
	return nil, nil
}

func (s *stubProjectService) ListOpenProjects(ctx context.Context, limit int) ([]*domain.Project, error) {
	return s.openFn(ctx, limit)
}

func (s *stubProjectService) CompleteProject(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	return s.transition(ctx, actor, id)
}

func (s *stubProjectService) CancelProject(ctx context.Context, actor ports.Actor, id string) (*domain.Project, error) {
	return s.transition(ctx, actor, id)
}

type stubProposalService struct {
	submitFn   func(ctx context.Context, in ports.SubmitProposalInput) (*ports.SubmitProposalResult, error)
	transition func(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error)
}

func (s *stubProposalService) SubmitProposal(ctx context.Context, in ports.SubmitProposalInput) (*ports.SubmitProposalResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubProposalService) GetProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	return s.transition(ctx, actor, id)
}

func (s *stubProposalService) ListMyProposals(context.Context, ports.Actor) ([]*domain.Proposal, error) {
	return nil, nil
}

func (s *stubProposalService) AcceptProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	return s.transition(ctx, actor, id)
}

func (s *stubProposalService) RejectProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	return s.transition(ctx, actor, id)
}

func (s *stubProposalService) NegotiateProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	return s.transition(ctx, actor, id)
}

func (s *stubProposalService) WithdrawProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	return s.transition(ctx, actor, id)
}

type stubMessageService struct {
	authorizeErr error
	sendFn       func(ctx context.Context, actor ports.Actor, projectID, content string) (*domain.Message, error)
}

func (s *stubMessageService) Load(context.Context, ports.Actor, string) ([]*domain.Message, error) {
	return nil, nil
}

func (s *stubMessageService) Send(ctx context.Context, actor ports.Actor, projectID, content string) (*domain.Message, error) {
	return s.sendFn(ctx, actor, projectID, content)
}

func (s *stubMessageService) Authorize(context.Context, ports.Actor, string) error {
	return s.authorizeErr
}

type stubFeed struct {
	ch        chan *domain.Message
	cancelled bool
}

func (s *stubFeed) Subscribe(string) (<-chan *domain.Message, func()) {
	return s.ch, func() { s.cancelled = true }
}

type stubAttachmentService struct {
	uploadFn func(ctx context.Context, actor ports.Actor, in ports.UploadInput) (*domain.Attachment, error)
	listFn   func(ctx context.Context, actor ports.Actor, projectID string) ([]*domain.Attachment, error)
}

func (s *stubAttachmentService) Upload(ctx context.Context, actor ports.Actor, in ports.UploadInput) (*domain.Attachment, error) {
	return s.uploadFn(ctx, actor, in)
}

func (s *stubAttachmentService) List(ctx context.Context, actor ports.Actor, projectID string) ([]*domain.Attachment, error) {
	return s.listFn(ctx, actor, projectID)
}

func (s *stubAttachmentService) Delete(context.Context, ports.Actor, string) error {
	return nil
}


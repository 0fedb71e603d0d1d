package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

const reconcileBatch = 50

type ProposalService struct {
	projects    ports.ProjectRepository
	proposals   ports.ProposalRepository
	acceptances ports.AcceptanceRepository
	access      projectAccess
	grace       time.Duration
	log         zerolog.Logger
}

// NewProposalService returns a ProposalService. grace is how long a pending
// acceptance intent is left alone before the reconciler resumes it.
func NewProposalService(
	projects ports.ProjectRepository,
	proposals ports.ProposalRepository,
	acceptances ports.AcceptanceRepository,
	grace time.Duration,
	log zerolog.Logger,
) *ProposalService {
	if grace <= 0 {
		grace = time.Minute
	}
	return &ProposalService{
		projects:    projects,
		proposals:   proposals,
		acceptances: acceptances,
		access:      projectAccess{projects: projects, proposals: proposals},
		grace:       grace,
		log:         log,
	}
}

// SubmitProposal creates the engineer's proposal for a project, or
// overwrites the existing one and resets it to sent. Concurrent submissions
// from the same engineer are last-write-wins.
func (s *ProposalService) SubmitProposal(ctx context.Context, in ports.SubmitProposalInput) (*ports.SubmitProposalResult, error) {
	if in.BidAmount <= 0 || in.EtaDays <= 0 {
		return nil, domain.ErrInvalidBid
	}

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.IsOpen() {
		return nil, domain.ErrProjectNotOpen
	}

	now := time.Now().UTC()
	existing, err := s.proposals.FindByProjectAndEngineer(ctx, in.ProjectID, in.EngineerID)
	switch {
	case err == nil:
		return s.overwrite(ctx, existing, in, now)
	case !errors.Is(err, domain.ErrProposalNotFound):
		return nil, fmt.Errorf("submit proposal: %w", err)
	}

	proposal := &domain.Proposal{
		ID:         uuid.NewString(),
		ProjectID:  in.ProjectID,
		EngineerID: in.EngineerID,
		BidAmount:  in.BidAmount,
		EtaDays:    in.EtaDays,
		Details:    strings.TrimSpace(in.Details),
		Status:     domain.ProposalSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.proposals.Insert(ctx, proposal); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("submit proposal: %w", err)
		}
		// Lost an insert race against another submission of the same pair.
		existing, findErr := s.proposals.FindByProjectAndEngineer(ctx, in.ProjectID, in.EngineerID)
		if findErr != nil {
			return nil, fmt.Errorf("submit proposal: %w", findErr)
		}
		return s.overwrite(ctx, existing, in, now)
	}

	s.log.Info().Str("proposal_id", proposal.ID).Str("project_id", in.ProjectID).Msg("proposal submitted")
	return &ports.SubmitProposalResult{Proposal: proposal}, nil
}

func (s *ProposalService) overwrite(ctx context.Context, existing *domain.Proposal, in ports.SubmitProposalInput, now time.Time) (*ports.SubmitProposalResult, error) {
	existing.BidAmount = in.BidAmount
	existing.EtaDays = in.EtaDays
	existing.Details = strings.TrimSpace(in.Details)
	existing.Status = domain.ProposalSent
	existing.UpdatedAt = now
	if err := s.proposals.Replace(ctx, existing); err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}
	s.log.Info().Str("proposal_id", existing.ID).Str("project_id", existing.ProjectID).Msg("proposal updated")
	return &ports.SubmitProposalResult{Proposal: existing, Updated: true}, nil
}

// GetProposal returns a proposal to its engineer or to the project client.
func (s *ProposalService) GetProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleEngineer && proposal.EngineerID == actor.ID {
		return proposal, nil
	}
	if _, err := s.access.ownedProject(ctx, actor, proposal.ProjectID); err != nil {
		return nil, err
	}
	return proposal, nil
}

func (s *ProposalService) ListMyProposals(ctx context.Context, actor ports.Actor) ([]*domain.Proposal, error) {
	if actor.Role != domain.RoleEngineer {
		return nil, domain.ErrForbidden
	}
	return s.proposals.ListByEngineer(ctx, actor.ID)
}

// AcceptProposal accepts a proposal on behalf of the project client. The
// three writes (proposal accepted, project in progress, siblings rejected)
// run behind a durable intent so a partial failure is resumed by Reconcile.
// Accepting an already accepted proposal re-runs the writes, which lets a
// client finish a failed attempt by retrying.
func (s *ProposalService) AcceptProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.access.ownedProject(ctx, actor, proposal.ProjectID)
	if err != nil {
		return nil, err
	}

	retry := false
	switch {
	case proposal.Status == domain.ProposalAccepted:
		if !project.Status.IsOpen() && project.Status != domain.ProjectInProgress {
			return nil, fmt.Errorf("%w (project is %s)", domain.ErrInvalidTransition, project.Status)
		}
		retry = true
	case !proposal.Status.CanTransitionTo(domain.ProposalAccepted):
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, proposal.Status, domain.ProposalAccepted)
	case !project.Status.IsOpen():
		return nil, fmt.Errorf("%w (project is %s)", domain.ErrInvalidTransition, project.Status)
	}

	now := time.Now().UTC()
	intent := &domain.AcceptanceIntent{
		ID:         uuid.NewString(),
		ProposalID: proposal.ID,
		ProjectID:  proposal.ProjectID,
		State:      domain.AcceptancePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.acceptances.Save(ctx, intent); err != nil {
		return nil, fmt.Errorf("accept proposal: record intent: %w", err)
	}

	if err := s.applyAcceptance(ctx, intent, acceptanceSteps()); err != nil {
		s.log.Error().Err(err).Str("intent_id", intent.ID).Str("proposal_id", id).Msg("acceptance left pending")
		return nil, fmt.Errorf("accept proposal: %w", err)
	}

	proposal.Status = domain.ProposalAccepted
	proposal.UpdatedAt = now
	s.log.Info().Str("proposal_id", id).Str("project_id", proposal.ProjectID).Bool("retry", retry).Msg("proposal accepted")
	return proposal, nil
}

// RejectProposal rejects a proposal. The project is left untouched.
func (s *ProposalService) RejectProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.ownedProject(ctx, actor, proposal.ProjectID); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, proposal, domain.ProposalRejected)
}

// NegotiateProposal flags a proposal as under negotiation. Either the
// project client or the proposing engineer may do so.
func (s *ProposalService) NegotiateProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !(actor.Role == domain.RoleEngineer && proposal.EngineerID == actor.ID) {
		if _, err := s.access.ownedProject(ctx, actor, proposal.ProjectID); err != nil {
			return nil, err
		}
	}
	return s.setStatus(ctx, proposal, domain.ProposalNegotiating)
}

// WithdrawProposal lets the engineer pull its own proposal.
func (s *ProposalService) WithdrawProposal(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleEngineer || proposal.EngineerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return s.setStatus(ctx, proposal, domain.ProposalWithdrawn)
}

func (s *ProposalService) setStatus(ctx context.Context, p *domain.Proposal, to domain.ProposalStatus) (*domain.Proposal, error) {
	if !p.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, p.Status, to)
	}
	if err := s.proposals.TransitionStatus(ctx, p.ID, to, p.Status); err != nil {
		return nil, fmt.Errorf("proposal %s: %w", to, err)
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	s.log.Info().Str("proposal_id", p.ID).Str("status", string(to)).Msg("proposal status changed")
	return p, nil
}

// Reconcile resumes pending acceptance intents older than the grace period.
// It returns how many intents were completed.
func (s *ProposalService) Reconcile(ctx context.Context) (int, error) {
	pending, err := s.acceptances.ListPending(ctx, time.Now().UTC().Add(-s.grace), reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("reconcile: list pending: %w", err)
	}

	done := 0
	for _, intent := range pending {
		if err := s.acceptances.IncrementAttempts(ctx, intent.ID); err != nil {
			s.log.Warn().Err(err).Str("intent_id", intent.ID).Msg("failed to bump intent attempts")
		}

		reason, err := s.staleReason(ctx, intent)
		if err != nil {
			s.log.Warn().Err(err).Str("intent_id", intent.ID).Msg("reconcile: intent lookup failed")
			continue
		}
		if reason != "" {
			// Re-applying would overturn a later decision.
			if err := s.acceptances.MarkDone(ctx, intent.ID); err != nil {
				s.log.Warn().Err(err).Str("intent_id", intent.ID).Msg("reconcile: mark done failed")
			}
			s.log.Warn().Str("intent_id", intent.ID).Str("reason", reason).Msg("reconcile: intent dropped")
			continue
		}

		if err := s.applyAcceptance(ctx, intent, acceptanceSteps()); err != nil {
			s.log.Warn().Err(err).Str("intent_id", intent.ID).Int("attempts", intent.Attempts+1).Msg("reconcile: acceptance still pending")
			continue
		}
		done++
		s.log.Info().Str("intent_id", intent.ID).Str("proposal_id", intent.ProposalID).Msg("reconcile: acceptance completed")
	}
	return done, nil
}

// staleReason explains why intent must not be replayed, or returns "" when
// it is still safe to resume.
func (s *ProposalService) staleReason(ctx context.Context, intent *domain.AcceptanceIntent) (string, error) {
	project, err := s.projects.FindByID(ctx, intent.ProjectID)
	if err != nil {
		return "", err
	}
	if project.Status == domain.ProjectCompleted || project.Status == domain.ProjectCancelled {
		return "project is " + string(project.Status), nil
	}

	proposals, err := s.proposals.ListByProject(ctx, intent.ProjectID)
	if err != nil {
		return "", err
	}
	reason := "proposal no longer exists"
	for _, p := range proposals {
		if p.ID != intent.ProposalID {
			if p.Status == domain.ProposalAccepted {
				return "proposal " + p.ID + " already accepted", nil
			}
			continue
		}
		reason = ""
		if !slices.Contains(domain.AcceptableFrom(), p.Status) {
			reason = "proposal is " + string(p.Status)
		}
	}
	return reason, nil
}

// acceptanceStep is one idempotent write of the accept-proposal saga.
type acceptanceStep struct {
	name string
	run  func(ctx context.Context, s *ProposalService, intent *domain.AcceptanceIntent) error
}

// acceptanceSteps returns the writes of an acceptance. Each is a
// compare-and-set that also accepts its own target state, and the sibling
// rejection never touches the accepted proposal, so the final state does not
// depend on the order they run in. A withdrawn proposal or a cancelled
// project makes the matching step fail instead of being overwritten.
func acceptanceSteps() []acceptanceStep {
	return []acceptanceStep{
		{"accept_proposal", func(ctx context.Context, s *ProposalService, in *domain.AcceptanceIntent) error {
			return s.proposals.TransitionStatus(ctx, in.ProposalID, domain.ProposalAccepted, domain.AcceptableFrom()...)
		}},
		{"start_project", func(ctx context.Context, s *ProposalService, in *domain.AcceptanceIntent) error {
			return s.projects.TransitionStatus(ctx, in.ProjectID, domain.ProjectInProgress,
				domain.ProjectOpen, domain.ProjectPending, domain.ProjectInProgress)
		}},
		{"reject_siblings", func(ctx context.Context, s *ProposalService, in *domain.AcceptanceIntent) error {
			_, err := s.proposals.RejectSiblings(ctx, in.ProjectID, in.ProposalID)
			return err
		}},
	}
}

func (s *ProposalService) applyAcceptance(ctx context.Context, intent *domain.AcceptanceIntent, steps []acceptanceStep) error {
	for _, step := range steps {
		if err := step.run(ctx, s, intent); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	if err := s.acceptances.MarkDone(ctx, intent.ID); err != nil {
		return fmt.Errorf("mark intent done: %w", err)
	}
	// Older attempts on the same project lost; the reconciler must not replay them.
	n, err := s.acceptances.SupersedePending(ctx, intent.ProjectID, intent.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("project_id", intent.ProjectID).Msg("failed to supersede older intents")
	} else if n > 0 {
		s.log.Info().Int64("superseded", n).Str("project_id", intent.ProjectID).Msg("older acceptance intents superseded")
	}
	return nil
}

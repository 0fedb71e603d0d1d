package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
)

var errStub = errors.New("stub failure")

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// ---- profiles ----

type stubProfileRepo struct {
	mu    sync.Mutex
	users map[string]*domain.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{users: make(map[string]*domain.Profile)}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	return &c
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == p.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[p.ID] = cloneProfile(p)
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) FindByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneProfile(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneProfile(u), nil
}

func (r *stubProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[p.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[p.ID] = cloneProfile(p)
	return nil
}

func (r *stubProfileRepo) ListEngineers(_ context.Context) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Profile
	for _, u := range r.users {
		if u.IsEngineer() {
			out = append(out, cloneProfile(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- projects ----

type stubProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	failNext map[string]error
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{projects: make(map[string]*domain.Project), failNext: make(map[string]error)}
}

func (r *stubProjectRepo) fail(op string) error {
	if err, ok := r.failNext[op]; ok {
		delete(r.failNext, op)
		return err
	}
	return nil
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.IdempotencyKey != "" {
		for _, e := range r.projects {
			if e.ClientID == p.ClientID && e.IdempotencyKey == p.IdempotencyKey {
				return domain.ErrDuplicateProject
			}
		}
	}
	c := *p
	r.projects[p.ID] = &c
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubProjectRepo) FindByIdempotencyKey(_ context.Context, clientID, key string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("FindByIdempotencyKey"); err != nil {
		return nil, err
	}
	for _, p := range r.projects {
		if p.ClientID == clientID && p.IdempotencyKey == key {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *stubProjectRepo) ListByClient(_ context.Context, clientID string) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.projects {
		if p.ClientID == clientID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) ListOpen(_ context.Context, limit int) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.projects {
		if p.Status.IsOpen() && len(out) < limit {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) TransitionStatus(_ context.Context, id string, to domain.ProjectStatus, from ...domain.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("TransitionStatus"); err != nil {
		return err
	}
	p, ok := r.projects[id]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if !slices.Contains(from, p.Status) {
		return domain.ErrInvalidTransition
	}
	p.Status = to
	return nil
}

func (r *stubProjectRepo) status(id string) domain.ProjectStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id].Status
}

// ---- proposals ----

type stubProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]*domain.Proposal
	failNext  map[string]error
}

func newStubProposalRepo() *stubProposalRepo {
	return &stubProposalRepo{proposals: make(map[string]*domain.Proposal), failNext: make(map[string]error)}
}

func (r *stubProposalRepo) fail(op string) error {
	if err, ok := r.failNext[op]; ok {
		delete(r.failNext, op)
		return err
	}
	return nil
}

func (r *stubProposalRepo) Insert(_ context.Context, p *domain.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.proposals {
		if e.ProjectID == p.ProjectID && e.EngineerID == p.EngineerID {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.proposals[p.ID] = &c
	return nil
}

func (r *stubProposalRepo) Replace(_ context.Context, p *domain.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.proposals[p.ID]; !ok {
		return domain.ErrProposalNotFound
	}
	c := *p
	r.proposals[p.ID] = &c
	return nil
}

func (r *stubProposalRepo) FindByID(_ context.Context, id string) (*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubProposalRepo) FindByProjectAndEngineer(_ context.Context, projectID, engineerID string) (*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.proposals {
		if p.ProjectID == projectID && p.EngineerID == engineerID {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrProposalNotFound
}

func (r *stubProposalRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Proposal
	for _, p := range r.proposals {
		if p.ProjectID == projectID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubProposalRepo) ListByEngineer(_ context.Context, engineerID string) ([]*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Proposal
	for _, p := range r.proposals {
		if p.EngineerID == engineerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubProposalRepo) TransitionStatus(_ context.Context, id string, to domain.ProposalStatus, from ...domain.ProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("TransitionStatus"); err != nil {
		return err
	}
	p, ok := r.proposals[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	if !slices.Contains(from, p.Status) {
		return domain.ErrInvalidTransition
	}
	p.Status = to
	return nil
}

func (r *stubProposalRepo) RejectSiblings(_ context.Context, projectID, keepID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("RejectSiblings"); err != nil {
		return 0, err
	}
	var n int64
	for _, p := range r.proposals {
		if p.ProjectID == projectID && p.ID != keepID {
			p.Status = domain.ProposalRejected
			n++
		}
	}
	return n, nil
}

func (r *stubProposalRepo) status(id string) domain.ProposalStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proposals[id].Status
}

// ---- acceptances ----

type stubAcceptanceRepo struct {
	mu      sync.Mutex
	intents map[string]*domain.AcceptanceIntent
}

func newStubAcceptanceRepo() *stubAcceptanceRepo {
	return &stubAcceptanceRepo{intents: make(map[string]*domain.AcceptanceIntent)}
}

func (r *stubAcceptanceRepo) Save(_ context.Context, in *domain.AcceptanceIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *in
	r.intents[in.ID] = &c
	return nil
}

func (r *stubAcceptanceRepo) MarkDone(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.intents[id]; ok {
		in.State = domain.AcceptanceDone
	}
	return nil
}

func (r *stubAcceptanceRepo) IncrementAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.intents[id]; ok {
		in.Attempts++
	}
	return nil
}

func (r *stubAcceptanceRepo) SupersedePending(_ context.Context, projectID, keepID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, in := range r.intents {
		if in.ProjectID == projectID && id != keepID && in.State == domain.AcceptancePending {
			in.State = domain.AcceptanceSuperseded
			n++
		}
	}
	return n, nil
}

func (r *stubAcceptanceRepo) ListPending(_ context.Context, olderThan time.Time, limit int) ([]*domain.AcceptanceIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AcceptanceIntent
	for _, in := range r.intents {
		if in.State == domain.AcceptancePending && in.UpdatedAt.Before(olderThan) && len(out) < limit {
			c := *in
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubAcceptanceRepo) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, in := range r.intents {
		if in.State == domain.AcceptancePending {
			n++
		}
	}
	return n
}

// backdate moves every intent out of the reconciler grace period.
func (r *stubAcceptanceRepo) backdate(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.intents {
		in.UpdatedAt = in.UpdatedAt.Add(-d)
	}
}

// ---- reviews ----

type stubReviewRepo struct {
	mu      sync.Mutex
	reviews []*domain.Review
}

func (r *stubReviewRepo) Create(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rv
	r.reviews = append(r.reviews, &c)
	return nil
}

func (r *stubReviewRepo) ListByReviewee(_ context.Context, revieweeID string) ([]*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.RevieweeID == revieweeID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.ProjectID == projectID {
			out = append(out, rv)
		}
	}
	return out, nil
}

// ---- messages ----

type stubMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
	senders  map[string]*domain.ProfileSummary
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *m
	r.messages = append(r.messages, &c)
	return nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			c := *m
			c.Sender = r.senders[m.SenderID]
			return &c, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubMessageRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ProjectID == projectID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domain.MessageEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, ev domain.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

// ---- attachments ----

type stubAttachmentRepo struct {
	mu        sync.Mutex
	rows      map[string]*domain.Attachment
	createErr error
	deleted   []string
}

func newStubAttachmentRepo() *stubAttachmentRepo {
	return &stubAttachmentRepo{rows: make(map[string]*domain.Attachment)}
}

func (r *stubAttachmentRepo) Create(_ context.Context, a *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	c := *a
	r.rows[a.ID] = &c
	return nil
}

func (r *stubAttachmentRepo) FindByID(_ context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrAttachmentNotFound
	}
	c := *a
	return &c, nil
}

func (r *stubAttachmentRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Attachment
	for _, a := range r.rows {
		if a.ProjectID == projectID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubAttachmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   int
	removes   int
	uploadErr error
	removeErr error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: make(map[string][]byte)}
}

func (b *stubBlobStore) Upload(_ context.Context, path, _ string, body io.Reader, _ int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads++
	if b.uploadErr != nil {
		return b.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	b.objects[path] = buf.Bytes()
	return nil
}

func (b *stubBlobStore) Remove(_ context.Context, paths ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removes++
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, p := range paths {
		delete(b.objects, p)
	}
	return nil
}

func (b *stubBlobStore) PublicURL(path string) string {
	return "https://blobs.test/" + domain.AttachmentBucket + "/" + path
}

// ---- tokens ----

type stubRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *stubRevoker) Revoke(_ context.Context, id string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = make(map[string]time.Time)
	}
	r.revoked[id] = exp
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

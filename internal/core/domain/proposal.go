package domain

import (
	"errors"
	"time"
)

// ProposalStatus represents the lifecycle state of an engineer's bid.
type ProposalStatus string

const (
	ProposalSent        ProposalStatus = "sent"
	ProposalNegotiating ProposalStatus = "negotiating"
	ProposalAccepted    ProposalStatus = "accepted"
	ProposalRejected    ProposalStatus = "rejected"
	ProposalWithdrawn   ProposalStatus = "withdrawn"
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalSent:        {ProposalAccepted, ProposalRejected, ProposalNegotiating, ProposalWithdrawn},
	ProposalNegotiating: {ProposalSent, ProposalAccepted, ProposalRejected, ProposalWithdrawn},
}

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidBid       = errors.New("bid amount and eta days must be greater than zero")
	ErrDuplicate        = errors.New("proposal already exists for this project and engineer")
)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Proposal is an engineer's bid against a project. At most one proposal
// exists per (project, engineer) pair.
type Proposal struct {
	ID         string         `json:"id" bson:"_id"`
	ProjectID  string         `json:"project_id" bson:"project_id"`
	EngineerID string         `json:"engineer_id" bson:"engineer_id"`
	BidAmount  float64        `json:"bid_amount" bson:"bid_amount"`
	EtaDays    int            `json:"eta_days" bson:"eta_days"`
	Details    string         `json:"details" bson:"details"`
	Status     ProposalStatus `json:"status" bson:"status"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`

	Engineer *ProfileSummary `json:"engineer,omitempty" bson:"-"`
}

// AcceptanceState tracks the progress of an accept-proposal saga.
type AcceptanceState string

const (
	AcceptancePending    AcceptanceState = "pending"
	AcceptanceDone       AcceptanceState = "done"
	AcceptanceSuperseded AcceptanceState = "superseded"
)

// acceptableFrom lists the proposal states an acceptance write may start
// from. Accepted is included so the write can be replayed.
var acceptableFrom = []ProposalStatus{ProposalSent, ProposalNegotiating, ProposalAccepted}

// AcceptableFrom returns the proposal states an acceptance may be applied to.
func AcceptableFrom() []ProposalStatus {
	return append([]ProposalStatus(nil), acceptableFrom...)
}

// AcceptanceIntent is the durable record written before the accept-proposal
// writes start. A pending intent means some of the writes may be missing;
// the reconciler re-applies all of them.
type AcceptanceIntent struct {
	ID         string          `json:"id" bson:"_id"`
	ProposalID string          `json:"proposal_id" bson:"proposal_id"`
	ProjectID  string          `json:"project_id" bson:"project_id"`
	State      AcceptanceState `json:"state" bson:"state"`
	Attempts   int             `json:"attempts" bson:"attempts"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" bson:"updated_at"`
}

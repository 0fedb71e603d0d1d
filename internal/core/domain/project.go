package domain

import (
	"errors"
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// projectTransitions defines the allowed project state machine transitions.
// pending is the legacy spelling of open and behaves identically.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectOpen:       {ProjectInProgress, ProjectCancelled},
	ProjectPending:    {ProjectInProgress, ProjectCancelled},
	ProjectInProgress: {ProjectCompleted, ProjectCancelled},
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNotOpen    = errors.New("project is not accepting proposals")
	ErrForbidden         = errors.New("access forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateProject  = errors.New("project already created with this idempotency key")
)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the project still accepts proposals.
func (s ProjectStatus) IsOpen() bool {
	return s == ProjectOpen || s == ProjectPending
}

// Project is a unit of work posted by a client.
type Project struct {
	ID             string        `json:"id" bson:"_id"`
	ClientID       string        `json:"client_id" bson:"client_id"`
	Title          string        `json:"title" bson:"title"`
	Description    string        `json:"description" bson:"description"`
	Category       string        `json:"category" bson:"category"`
	BudgetEstimate *float64      `json:"budget_estimate,omitempty" bson:"budget_estimate,omitempty"`
	EtaDays        *int          `json:"eta_days,omitempty" bson:"eta_days,omitempty"`
	Location       string        `json:"location,omitempty" bson:"location,omitempty"`
	Status         ProjectStatus `json:"status" bson:"status"`
	IdempotencyKey string        `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`

	// Client is populated by joins; it is never persisted on the project.
	Client *ProfileSummary `json:"client,omitempty" bson:"-"`
}

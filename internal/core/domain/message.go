package domain

import (
	"errors"
	"time"
)

var (
	ErrEmptyMessage    = errors.New("message content cannot be empty")
	ErrMessageNotFound = errors.New("message not found")
)

// Message is a single entry of a project conversation. Messages are
// append-only and ordered by CreatedAt ascending.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	ProjectID string    `json:"project_id" bson:"project_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Sender *ProfileSummary `json:"sender,omitempty" bson:"sender,omitempty"`
}

// MessageEvent is the change-feed notification published after a message
// row is inserted. Subscribers fetch the full row themselves.
type MessageEvent struct {
	ProjectID string    `json:"project_id"`
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

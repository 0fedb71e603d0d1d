package ports

import (
	"context"
	"io"

	"github.com/obralink/marketplace/internal/core/domain"
)

// AttachmentRepository persists attachment metadata rows.
type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) error
	FindByID(ctx context.Context, id string) (*domain.Attachment, error)
	// ListByProject returns rows newest first with the uploader name.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore is the object storage holding attachment bytes.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) error
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}

package ports

import (
	"context"
	"io"

	"github.com/obralink/marketplace/internal/core/domain"
)

// UploadInput describes a file to attach to a project.
type UploadInput struct {
	ProjectID   string
	UploaderID  string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	// MaxSizeMB optionally lowers the configured limit for this call.
	MaxSizeMB int
}

type AttachmentService interface {
	Upload(ctx context.Context, actor Actor, in UploadInput) (*domain.Attachment, error)
	List(ctx context.Context, actor Actor, projectID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

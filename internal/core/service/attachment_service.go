package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// AttachmentService stores project files in the blob store and keeps their
// metadata rows.
type AttachmentService struct {
	attachments ports.AttachmentRepository
	blobs       ports.BlobStore
	access      projectAccess
	policy      domain.UploadPolicy
	log         zerolog.Logger
}

func NewAttachmentService(
	attachments ports.AttachmentRepository,
	blobs ports.BlobStore,
	projects ports.ProjectRepository,
	proposals ports.ProposalRepository,
	policy domain.UploadPolicy,
	log zerolog.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		blobs:       blobs,
		access:      projectAccess{projects: projects, proposals: proposals},
		policy:      policy,
		log:         log,
	}
}

// Upload validates the file against the upload policy before any I/O,
// stores the bytes, then records the metadata row. If the row cannot be
// written the stored blob is removed again.
func (s *AttachmentService) Upload(ctx context.Context, actor ports.Actor, in ports.UploadInput) (*domain.Attachment, error) {
	policy := s.policy
	if in.MaxSizeMB > 0 && in.MaxSizeMB < policy.MaxSizeMB {
		policy.MaxSizeMB = in.MaxSizeMB
	}
	if err := policy.Check(in.FileName, in.Size); err != nil {
		return nil, err
	}

	if _, err := s.access.participant(ctx, actor, in.ProjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	path := domain.AttachmentPath(in.ProjectID, domain.GeneratedFileName(in.FileName, now, suffix))

	if err := s.blobs.Upload(ctx, path, in.ContentType, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	att := &domain.Attachment{
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		UploaderID:  actor.ID,
		FilePath:    path,
		FileName:    in.FileName,
		Size:        in.Size,
		ContentType: in.ContentType,
		CreatedAt:   now,
	}
	if err := s.attachments.Create(ctx, att); err != nil {
		if rmErr := s.blobs.Remove(ctx, path); rmErr != nil {
			s.log.Error().Err(rmErr).Str("path", path).Msg("failed to remove orphaned blob")
		}
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	att.PublicURL = s.blobs.PublicURL(path)
	s.log.Info().Str("attachment_id", att.ID).Str("project_id", in.ProjectID).Int64("size", in.Size).Msg("file uploaded")
	return att, nil
}

// List returns the project's files, newest first, with public URLs.
func (s *AttachmentService) List(ctx context.Context, actor ports.Actor, projectID string) ([]*domain.Attachment, error) {
	if _, err := s.access.participant(ctx, actor, projectID); err != nil {
		return nil, err
	}
	rows, err := s.attachments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		a.PublicURL = s.blobs.PublicURL(a.FilePath)
	}
	return rows, nil
}

// Delete removes the blob and then the row. When the blob cannot be removed
// the row is kept so the file stays listed.
func (s *AttachmentService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	att, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if att.UploaderID != actor.ID {
		return domain.ErrForbidden
	}
	if err := s.blobs.Remove(ctx, att.FilePath); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	s.log.Info().Str("attachment_id", id).Msg("file deleted")
	return nil
}

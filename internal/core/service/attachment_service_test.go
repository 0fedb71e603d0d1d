package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

type attachmentFixture struct {
	rows  *stubAttachmentRepo
	blobs *stubBlobStore
	svc   *AttachmentService
	proj  *domain.Project
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	wf := newWorkflowFixture()
	p := wf.createProject(t)
	wf.submit(t, p.ID, engineerActor, 100)

	f := &attachmentFixture{rows: newStubAttachmentRepo(), blobs: newStubBlobStore(), proj: p}
	f.svc = NewAttachmentService(f.rows, f.blobs, wf.projects, wf.proposals, domain.DefaultUploadPolicy(), nopLogger())
	return f
}

func (f *attachmentFixture) upload(actor ports.Actor, name string, size int64) (*domain.Attachment, error) {
	return f.svc.Upload(context.Background(), actor, ports.UploadInput{
		ProjectID:   f.proj.ID,
		UploaderID:  actor.ID,
		FileName:    name,
		ContentType: "application/pdf",
		Size:        size,
		Body:        bytes.NewReader(make([]byte, 16)),
	})
}

func TestAttachmentService_Upload(t *testing.T) {
	f := newAttachmentFixture(t)

	att, err := f.upload(clientActor, "Planos.PDF", 2048)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	prefix := "projects/" + f.proj.ID + "/"
	if !strings.HasPrefix(att.FilePath, prefix) || !strings.HasSuffix(att.FilePath, ".pdf") {
		t.Fatalf("unexpected path %q", att.FilePath)
	}
	if _, ok := f.blobs.objects[att.FilePath]; !ok {
		t.Fatalf("blob not stored")
	}
	if att.PublicURL == "" || att.FileName != "Planos.PDF" {
		t.Fatalf("unexpected attachment %+v", att)
	}
}

func TestAttachmentService_Upload_PolicyBeforeIO(t *testing.T) {
	f := newAttachmentFixture(t)

	if _, err := f.upload(clientActor, "big.pdf", 15*1024*1024); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, err := f.upload(clientActor, "virus.exe", 1024); !errors.Is(err, domain.ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed, got %v", err)
	}
	if f.blobs.uploads != 0 || len(f.rows.rows) != 0 {
		t.Fatalf("rejected files must not reach storage: %d uploads, %d rows", f.blobs.uploads, len(f.rows.rows))
	}
}

func TestAttachmentService_Upload_Forbidden(t *testing.T) {
	f := newAttachmentFixture(t)
	if _, err := f.upload(engineerTwo, "a.pdf", 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if f.blobs.uploads != 0 {
		t.Fatalf("forbidden upload reached storage")
	}
}

func TestAttachmentService_Upload_CompensatesOnRowFailure(t *testing.T) {
	f := newAttachmentFixture(t)
	f.rows.createErr = errStub

	if _, err := f.upload(clientActor, "a.pdf", 10); !errors.Is(err, errStub) {
		t.Fatalf("expected row failure, got %v", err)
	}
	if f.blobs.uploads != 1 || f.blobs.removes != 1 || len(f.blobs.objects) != 0 {
		t.Fatalf("blob should be removed again: uploads=%d removes=%d objects=%d",
			f.blobs.uploads, f.blobs.removes, len(f.blobs.objects))
	}
}

func TestAttachmentService_Delete(t *testing.T) {
	f := newAttachmentFixture(t)
	att, err := f.upload(engineerActor, "a.pdf", 10)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	ctx := context.Background()

	if err := f.svc.Delete(ctx, clientActor, att.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("only the uploader may delete, got %v", err)
	}

	f.blobs.removeErr = errStub
	if err := f.svc.Delete(ctx, engineerActor, att.ID); err == nil {
		t.Fatalf("expected blob removal failure")
	}
	if _, ok := f.rows.rows[att.ID]; !ok {
		t.Fatalf("row must survive a failed blob removal")
	}

	f.blobs.removeErr = nil
	if err := f.svc.Delete(ctx, engineerActor, att.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := f.svc.List(ctx, clientActor, f.proj.ID)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

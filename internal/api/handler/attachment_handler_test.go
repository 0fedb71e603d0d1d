package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestAttachmentHandler_Upload(t *testing.T) {
	var got ports.UploadInput
	var gotBody []byte
	stub := &stubAttachmentService{
		uploadFn: func(_ context.Context, _ ports.Actor, in ports.UploadInput) (*domain.Attachment, error) {
			got = in
			gotBody, _ = io.ReadAll(in.Body)
			return &domain.Attachment{ID: "f1", FileName: in.FileName, Size: in.Size, PublicURL: "https://cdn/x.pdf"}, nil
		},
	}
	h := NewAttachmentHandler(stub)

	body, contentType := multipartBody(t, "plans.pdf", []byte("%PDF-1.4 plans"), map[string]string{"max_size_mb": "5"})
	c, rec := newContext(t, http.MethodPost, "/v1/projects/p1/files", nil, client)
	c.Request().Body = io.NopCloser(body)
	c.Request().Header.Set(echo.HeaderContentType, contentType)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.ProjectID != "p1" || got.FileName != "plans.pdf" || got.MaxSizeMB != 5 || got.Size != int64(len("%PDF-1.4 plans")) {
		t.Fatalf("unexpected input: %+v", got)
	}
	if string(gotBody) != "%PDF-1.4 plans" {
		t.Fatalf("body not forwarded: %q", gotBody)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["kind"] != "document" || resp["size_label"] != "14 Bytes" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAttachmentHandler_Upload_MissingFile(t *testing.T) {
	h := NewAttachmentHandler(&stubAttachmentService{})
	body, contentType := multipartBody(t, "", nil, nil)
	c, _ := newContext(t, http.MethodPost, "/v1/projects/p1/files", nil, client)
	c.Request().Body = io.NopCloser(body)
	c.Request().Header.Set(echo.HeaderContentType, contentType)

	assertHTTPError(t, h.Upload(c), http.StatusBadRequest)
}

func TestAttachmentHandler_Upload_PolicyErrorPassesThrough(t *testing.T) {
	stub := &stubAttachmentService{
		uploadFn: func(context.Context, ports.Actor, ports.UploadInput) (*domain.Attachment, error) {
			return nil, domain.ErrFileTypeNotAllowed
		},
	}
	h := NewAttachmentHandler(stub)
	body, contentType := multipartBody(t, "setup.exe", []byte("MZ"), nil)
	c, _ := newContext(t, http.MethodPost, "/v1/projects/p1/files", nil, client)
	c.Request().Body = io.NopCloser(body)
	c.Request().Header.Set(echo.HeaderContentType, contentType)

	err := h.Upload(c)
	if !errors.Is(err, domain.ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed, got %v", err)
	}
	if uploadResult(err) != "rejected" {
		t.Fatalf("policy errors must be counted as rejected")
	}
}

func TestAttachmentHandler_List(t *testing.T) {
	stub := &stubAttachmentService{
		listFn: func(context.Context, ports.Actor, string) ([]*domain.Attachment, error) {
			return []*domain.Attachment{
				{ID: "f2", FileName: "photo.PNG", Size: 2048},
				{ID: "f1", FileName: "budget.xlsx", Size: 1536},
			}, nil
		},
	}
	h := NewAttachmentHandler(stub)
	c, rec := newContext(t, http.MethodGet, "/v1/projects/p1/files", nil, client)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp struct {
		Items []map[string]any `json:"items"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || resp.Items[0]["kind"] != "image" || resp.Items[1]["size_label"] != "1.5 KB" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

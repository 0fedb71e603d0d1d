// Package storage holds the blob store adapters for project attachments.
package storage

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps attachments in a Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore builds a store from the project URL and service key.
func NewSupabaseStore(url, serviceKey, bucket string) (*SupabaseStore, error) {
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return newSupabaseStore(client.Storage, bucket), nil
}

func newSupabaseStore(client *storage_go.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

// Upload stores body at path. Existing objects are never overwritten since
// every generated name is unique.
func (s *SupabaseStore) Upload(_ context.Context, path, contentType string, body io.Reader, _ int64) error {
	upsert := false
	opts := storage_go.FileOptions{Upsert: &upsert}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := s.client.UploadFile(s.bucket, path, body, opts); err != nil {
		return fmt.Errorf("supabase upload %s: %w", path, err)
	}
	return nil
}

func (s *SupabaseStore) Remove(_ context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("supabase remove: %w", err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(path string) string {
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}

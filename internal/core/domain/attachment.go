package domain

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxFileSizeMB is the upload limit used when none is configured.
	DefaultMaxFileSizeMB = 10
	// AttachmentBucket is the blob bucket holding project files.
	AttachmentBucket = "project-files"
)

// DefaultAllowedExtensions is the upload allow-list (lower-case, with dot).
var DefaultAllowedExtensions = []string{
	".pdf", ".doc", ".docx", ".txt", ".rtf",
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".mp4", ".avi", ".mov",
	".zip", ".rar", ".7z",
	".xls", ".xlsx", ".ppt", ".pptx",
}

var (
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrEmptyFile          = errors.New("file is empty")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// Attachment is the metadata row of a file stored in the blob store.
// PublicURL is derived at read time and never persisted.
type Attachment struct {
	ID          string    `json:"id" bson:"_id"`
	ProjectID   string    `json:"project_id" bson:"project_id"`
	UploaderID  string    `json:"uploader_id" bson:"uploader_id"`
	FilePath    string    `json:"file_path" bson:"file_path"`
	FileName    string    `json:"file_name" bson:"file_name"`
	Size        int64     `json:"size" bson:"size"`
	ContentType string    `json:"content_type,omitempty" bson:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`

	UploaderName string `json:"uploader_name,omitempty" bson:"uploader_name,omitempty"`
	PublicURL    string `json:"public_url,omitempty" bson:"-"`
}

// UploadPolicy bounds what may be uploaded.
type UploadPolicy struct {
	MaxSizeMB         int
	AllowedExtensions []string
}

// DefaultUploadPolicy returns the 10MB / default allow-list policy.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{MaxSizeMB: DefaultMaxFileSizeMB, AllowedExtensions: DefaultAllowedExtensions}
}

// MaxBytes returns the size limit in bytes.
func (p UploadPolicy) MaxBytes() int64 {
	mb := p.MaxSizeMB
	if mb <= 0 {
		mb = DefaultMaxFileSizeMB
	}
	return int64(mb) * 1024 * 1024
}

// Check validates a file name and size against the policy.
func (p UploadPolicy) Check(fileName string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > p.MaxBytes() {
		return fmt.Errorf("%w: maximum %dMB", ErrFileTooLarge, p.MaxBytes()/(1024*1024))
	}
	ext := FileExtension(fileName)
	allowed := p.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	for _, a := range allowed {
		if a == ext {
			return nil
		}
	}
	return fmt.Errorf("%w: accepted types %s", ErrFileTypeNotAllowed, strings.Join(allowed, ", "))
}

// FileExtension returns the lower-cased extension of name including the dot.
func FileExtension(name string) string {
	return strings.ToLower(path.Ext(name))
}

// AttachmentPath builds the blob key for a generated file name.
func AttachmentPath(projectID, generatedName string) string {
	return "projects/" + projectID + "/" + generatedName
}

// GeneratedFileName returns "{unix_millis}-{suffix}{ext}".
func GeneratedFileName(originalName string, now time.Time, suffix string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + FileExtension(originalName)
}

// FileKind classifies a file by extension for display purposes.
func FileKind(name string) string {
	switch FileExtension(name) {
	case ".pdf", ".txt", ".rtf":
		return "document"
	case ".doc", ".docx":
		return "word"
	case ".xls", ".xlsx":
		return "spreadsheet"
	case ".ppt", ".pptx":
		return "presentation"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".avi", ".mov":
		return "video"
	case ".mp3", ".wav":
		return "audio"
	case ".zip", ".rar", ".7z":
		return "archive"
	}
	return "other"
}

// FormatFileSize renders bytes using 1024-based units with two decimals at most.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + sizes[i]
}

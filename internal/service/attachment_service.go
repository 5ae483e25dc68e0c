package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sgo/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxAttachmentSize = 5 << 20

var allowedAttachmentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type AttachmentUpload struct {
	Filename    string
	ContentType string // as declared by the client
	Size        int64
	Body        io.Reader
}

type AttachmentResponse struct {
	FilePath    string `json:"file_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type AttachmentService interface {
	Upload(ctx context.Context, upload AttachmentUpload) (*AttachmentResponse, error)
	// Open returns the stored file and its content type. The caller closes the reader.
	Open(ctx context.Context, fileName string) (io.ReadCloser, string, error)
}

type attachmentService struct {
	store storage.Provider
}

func NewAttachmentService(store storage.Provider) AttachmentService {
	return &attachmentService{store: store}
}

func (s *attachmentService) Upload(ctx context.Context, upload AttachmentUpload) (*AttachmentResponse, error) {
	if upload.Size > MaxAttachmentSize {
		return nil, validationError("file exceeds the 5MB limit")
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]))
	if declared != "" && declared != "application/octet-stream" && !allowedType(declared) {
		return nil, validationError("file type %s is not allowed", declared)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, validationError("file is empty")
	}
	if len(data) > MaxAttachmentSize {
		return nil, validationError("file exceeds the 5MB limit")
	}

	detected := mimetype.Detect(data)
	contentType := ""
	for _, allowed := range allowedAttachmentTypes {
		if detected.Is(allowed) {
			contentType = allowed
			break
		}
	}
	if contentType == "" {
		return nil, validationError("file type %s is not allowed", detected.String())
	}

	ext := detected.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(upload.Filename))
	}
	key := uuid.New().String() + ext

	if err := s.store.Put(ctx, key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	return &AttachmentResponse{FilePath: key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *attachmentService) Open(ctx context.Context, fileName string) (io.ReadCloser, string, error) {
	if !safeFileName(fileName) {
		return nil, "", validationError("invalid file name")
	}
	rc, contentType, err := s.store.Get(ctx, fileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", notFoundError("attachment")
		}
		return nil, "", err
	}
	return rc, contentType, nil
}

func allowedType(contentType string) bool {
	for _, allowed := range allowedAttachmentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// safeFileName accepts a bare file name with no directory parts.
func safeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}

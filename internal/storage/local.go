package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Local struct {
	baseDir string
}

func NewLocal(baseDir string) *Local {
	return &Local{baseDir: baseDir}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Put(_ context.Context, key string, body io.Reader, _ string, _ int64) error {
	if err := os.MkdirAll(l.baseDir, 0o755); err != nil {
		return wrap("put", key, err)
	}
	dst, err := os.Create(filepath.Join(l.baseDir, key))
	if err != nil {
		return wrap("put", key, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return wrap("put", key, err)
	}
	return nil
}

func (l *Local) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", wrap("get", key, err)
	}
	return file, ContentTypeFor(key), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return wrap("delete", key, err)
	}
	return nil
}

// ContentTypeFor infers the content type from the file extension.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

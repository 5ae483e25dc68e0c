// Package storage keeps expense attachments on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sgo/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("file not found")

type Provider interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	// Get returns the object and its content type. Missing keys yield ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// New picks the bucket backend when S3 settings are complete and reachable,
// otherwise local disk under cfg.UploadDir.
func New(cfg *config.Config, log *zap.Logger) Provider {
	if !cfg.S3Configured() {
		log.Info("attachment storage ready", zap.String("backend", "local"), zap.String("dir", cfg.UploadDir))
		return NewLocal(cfg.UploadDir)
	}

	bucket, err := NewS3(context.Background(), S3Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		log.Warn("s3 storage unavailable, using local disk", zap.Error(err))
		return NewLocal(cfg.UploadDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := bucket.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &bucket.bucket}); err != nil {
		log.Warn("s3 bucket check failed, using local disk", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
		return NewLocal(cfg.UploadDir)
	}

	log.Info("attachment storage ready", zap.String("backend", "s3"), zap.String("bucket", cfg.S3Bucket))
	return bucket
}

func wrap(op, key string, err error) error {
	return fmt.Errorf("%s %s: %w", op, key, err)
}

package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"storefront-service/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxProductImages = 5
	MaxImageBytes    = 5 << 20
)

// ImageUpload is one image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// StoredImage is an uploaded image's storage key and public URL.
type StoredImage struct {
	Key string
	URL string
}

type ImageStore interface {
	Upload(ctx context.Context, images []ImageUpload) ([]StoredImage, error)
	// Release deletes the given keys. Failures are logged, never returned.
	Release(ctx context.Context, keys []string)
}

// ObjectBucket is the object storage used by S3ImageStore.
type ObjectBucket interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type S3ImageStore struct {
	bucket ObjectBucket
	prefix string
}

func NewS3ImageStore(bucket ObjectBucket, prefix string) *S3ImageStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3ImageStore{bucket: bucket, prefix: prefix}
}

// Upload stores every image under a fresh key. On failure the images
// already stored by this call are released before returning.
func (s *S3ImageStore) Upload(ctx context.Context, images []ImageUpload) ([]StoredImage, error) {
	stored := make([]StoredImage, 0, len(images))
	for _, img := range images {
		key := s.prefix + uuid.NewString() + strings.ToLower(path.Ext(img.Filename))

		url, err := s.put(ctx, key, img)
		if err != nil {
			s.Release(context.WithoutCancel(ctx), keysOf(stored))
			return nil, fmt.Errorf("failed to upload %s: %w", img.Filename, err)
		}
		stored = append(stored, StoredImage{Key: key, URL: url})
	}
	return stored, nil
}

func (s *S3ImageStore) put(ctx context.Context, key string, img ImageUpload) (string, error) {
	body, err := img.Open()
	if err != nil {
		return "", err
	}
	defer body.Close()
	return s.bucket.Put(ctx, key, body, img.ContentType)
}

func (s *S3ImageStore) Release(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.bucket.Delete(ctx, key); err != nil {
			logger.Warn(ctx, "Failed to release image", zap.String("key", key), zap.Error(err))
		}
	}
}

func keysOf(images []StoredImage) []string {
	keys := make([]string, len(images))
	for i, img := range images {
		keys[i] = img.Key
	}
	return keys
}

package aws

import (
	"context"
	"fmt"
	"io"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage is the subset of the S3 API used for product images.
type ObjectStorage interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client creates a path-style S3 client, which LocalStack and MinIO require.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// Bucket uploads and deletes objects under one bucket and builds their public URLs.
type Bucket struct {
	client    ObjectStorage
	name      string
	endpoint  string
	cdnDomain string
}

func NewBucket(client ObjectStorage, name, endpoint, cdnDomain string) *Bucket {
	return &Bucket{
		client:    client,
		name:      name,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// Put stores body under key and returns the object's public URL.
func (b *Bucket) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(b.name),
		Key:    sdkaws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return b.PublicURL(key), nil
}

// Delete removes the object stored under key.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(b.name),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL prefers the CDN domain, then the custom endpoint, then the
// virtual-hosted S3 URL.
func (b *Bucket) PublicURL(key string) string {
	switch {
	case b.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(b.cdnDomain, "/"), key)
	case b.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.endpoint, "/"), b.name, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.name, key)
	}
}

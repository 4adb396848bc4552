package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Asset is a stored object on the asset host. URL is the public address
// handed to clients; Key is what Delete needs later.
type Asset struct {
	URL string
	Key string
}

// Storage is the contract against the external asset host: uploads block
// until the URL is known, deletes are best-effort from the caller's side.
type Storage interface {
	Upload(ctx context.Context, body io.Reader, filename, contentType string) (*Asset, error)
	Delete(ctx context.Context, key string) error
}

// File is an in-flight upload, usually backed by a multipart part.
type File struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Storage talks to an S3-compatible asset host (AWS S3, MinIO, ...).
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	awsConfig, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(cfg.Region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s/%s", cfg.Endpoint, cfg.Bucket)
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBase,
	}, nil
}

func objectKey(filename string) string {
	now := time.Now()
	return fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), filepath.Ext(filename))
}

func (s *S3Storage) Upload(ctx context.Context, body io.Reader, filename, contentType string) (*Asset, error) {
	key := objectKey(filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &Asset{
		URL: fmt.Sprintf("%s/%s", s.publicBaseURL, key),
		Key: key,
	}, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

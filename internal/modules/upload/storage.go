package upload

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/afr-space/core/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned when no bucket credentials are set.
var ErrNotConfigured = errors.New("object storage is not configured")

// Storage persists an object and returns its public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// S3Storage writes objects to an S3 compatible bucket.
type S3Storage struct {
	client *s3.Client
	cfg    config.S3Config
}

func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.PathStyle,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Storage{client: client, cfg: cfg}, nil
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", err
	}
	return PublicURL(s.cfg, key), nil
}

// PublicURL is where a stored object can be read from.
func PublicURL(cfg config.S3Config, key string) string {
	if base := strings.TrimRight(cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if endpoint := strings.TrimRight(cfg.Endpoint, "/"); endpoint != "" {
		return endpoint + "/" + cfg.Bucket + "/" + key
	}
	return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com/" + key
}

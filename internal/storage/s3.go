package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the settings for an S3 (or S3-compatible) opener
type S3Config struct {
	Bucket    string // default bucket for locators without one
	Region    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool
}

// S3 opens s3://bucket/key locators. A bare key uses the default bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3 opener using the default AWS credential chain
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3WithClient(client, cfg.Bucket), nil
}

// NewS3WithClient wraps an existing client
func NewS3WithClient(client *s3.Client, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Open fetches the object named by locator
func (s *S3) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	bucket, key, err := s.split(locator)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotExist, bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func (s *S3) split(locator string) (bucket, key string, err error) {
	if Scheme(locator) != "s3" {
		if s.bucket == "" {
			return "", "", fmt.Errorf("no bucket for locator %q", locator)
		}
		return s.bucket, strings.TrimPrefix(locator, "/"), nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 locator %q: %w", locator, err)
	}
	bucket = u.Host
	if bucket == "" {
		bucket = s.bucket
	}
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 locator %q: bucket and key required", locator)
	}
	return bucket, key, nil
}

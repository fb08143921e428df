package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	// Endpoint is the S3 API endpoint; empty means AWS.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is prefixed to "<bucket>/<key>" to build public URLs.
	// Defaults to Endpoint.
	PublicBaseURL string
}

type S3Storage struct {
	client     objectPutter
	publicBase string
}

func NewS3Storage(ctx context.Context, o S3Options) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			// MinIO serves buckets as path segments
			so.UsePathStyle = true
		}
	})

	base := o.PublicBaseURL
	if base == "" {
		base = o.Endpoint
	}
	if base == "" {
		return nil, errors.New("s3: public base url is required")
	}

	return &S3Storage{client: client, publicBase: base}, nil
}

func (s *S3Storage) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(bucket, key string) string {
	return joinURL(s.publicBase, bucket, key)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/outreachly/outreach-backend/internal/config"
)

// S3Source reads uploads from one bucket of an S3-compatible store
// (AWS, Supabase Storage, MinIO)
type S3Source struct {
	client *s3.S3
	bucket string
}

func NewS3Source(cfg config.StorageConfig) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to create session: %w", err)
	}

	return &S3Source{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

// Open streams the object at path. A leading bucket segment
// ("csv/leads.csv") is accepted and stripped.
func (s *S3Source) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(path, "/"), s.bucket+"/")

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("s3: get %s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

var _ Source = (*S3Source)(nil)

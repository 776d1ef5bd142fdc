package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sakif/smartbio/internal/apperror"
)

// S3API is the subset of *s3.Client that S3Store uses. Tests supply a fake.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Config describes how to reach the bucket. For MinIO set Endpoint (e.g.
// "http://localhost:9000") and static keys; for AWS leave Endpoint and the
// keys empty to use the default credential chain.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds an *s3.Client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("pages: loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most self-hosted servers don't do virtual-host buckets.
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store keeps each page as the object "pages/<id>.html".
type S3Store struct {
	api    S3API
	bucket string

	mu          sync.Mutex
	bucketReady bool
}

func NewS3Store(api S3API, bucket string) *S3Store {
	return &S3Store{api: api, bucket: bucket}
}

func objectKey(id string) string {
	return "pages/" + id + ".html"
}

// ensureBucket creates the bucket on first use. A failed attempt is retried
// on the next write.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}

	_, err := s.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if !errors.As(err, &owned) && !errors.As(err, &exists) {
			return fmt.Errorf("pages: creating bucket %s: %w", s.bucket, err)
		}
	}
	s.bucketReady = true
	return nil
}

// Write uploads the rendered document. A PUT replaces the whole object, so
// readers never see a partial page.
func (s *S3Store) Write(ctx context.Context, p Page) error {
	if err := checkID(p.ID); err != nil {
		return fmt.Errorf("pages: refusing to write invalid id %q", p.ID)
	}

	doc, err := Render(p)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(p.ID)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("pages: uploading %s: %w", p.ID, err)
	}
	return nil
}

func (s *S3Store) Read(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(id)),
	})
	if err != nil {
		if isMissing(err) {
			return nil, apperror.NotFound("page", id)
		}
		return nil, fmt.Errorf("pages: downloading %s: %w", id, err)
	}
	defer out.Body.Close()

	doc, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("pages: reading %s: %w", id, err)
	}
	return doc, nil
}

// isMissing matches both the typed NoSuchKey error and the generic codes some
// S3-compatible servers send instead.
func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

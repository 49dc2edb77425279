package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the part of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store archives uploads in a bucket. Every object is also spooled to a
// local directory, since ffmpeg needs a file path.
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	spool   *DiskStore
	maxSize int64
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3API, bucket, prefix, spoolDir string, maxSize int64) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 store: bucket is required")
	}
	spool, err := NewDiskStore(spoolDir, maxSize)
	if err != nil {
		return nil, err
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, spool: spool, maxSize: maxSize}, nil
}

// DialS3 builds a store from the default AWS credential chain.
func DialS3(ctx context.Context, region, bucket, prefix, spoolDir string, maxSize int64) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix, spoolDir, maxSize)
}

// Save spools r locally and then uploads the spooled file.
func (s *S3Store) Save(ctx context.Context, name, contentType string, r io.Reader) (Object, error) {
	obj, err := s.spool.Save(ctx, name, contentType, r)
	if err != nil {
		return Object{}, err
	}

	f, err := os.Open(obj.Path)
	if err != nil {
		return Object{}, err
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + obj.Key),
		Body:          f,
		ContentLength: aws.Int64(obj.Size),
		Metadata: map[string]string{
			"original-filename": name,
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		_ = os.Remove(obj.Path)
		return Object{}, fmt.Errorf("s3 upload failed: %w", err)
	}
	return obj, nil
}

// Open returns the spooled copy, downloading it first if it is missing.
func (s *S3Store) Open(ctx context.Context, key string) (Object, error) {
	obj, err := s.spool.Open(ctx, key)
	if err == nil || !errors.Is(err, ErrNotFound) || !validKey(key) {
		return obj, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("s3 download failed: %w", err)
	}
	defer out.Body.Close()

	path := filepath.Join(s.spool.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return Object{}, err
	}
	n, err := copyLimited(f, out.Body, s.maxSize)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return Object{}, err
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return Object{Key: key, Path: path, Size: n, ContentType: contentType}, nil
}

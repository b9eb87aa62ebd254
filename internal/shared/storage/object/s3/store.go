package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"records-backend/internal/shared/storage/object"
)

// Store implements object.Store using Amazon S3. The provider reads page
// images straight from the bucket, so saved locations carry the real bucket
// name.
type Store struct {
	client *awss3.Client
	bucket string
	prefix string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, region, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Save uploads the reader contents under a uuid-prefixed key.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (object.Location, error) {
	if err := ctx.Err(); err != nil {
		return object.Location{}, err
	}

	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeName(name))
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	if _, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}); err != nil {
		return object.Location{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}

	return object.Location{Bucket: s.bucket, Key: key}, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, loc object.Location) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", loc.Bucket, loc.Key, err)
	}
	return out.Body, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, " ", "_")
}

var _ object.Store = (*Store)(nil)

package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"tirescan-backend/internal/shared/storage/object"
)

// Options selects the bucket that receives archived photos.
type Options struct {
	Region   string
	Bucket   string
	Prefix   string
	KMSKeyID string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store archives photos in S3, encrypted at rest with SSE-KMS when a key
// is configured and SSE-S3 otherwise.
type Store struct {
	api  putObjectAPI
	opts Options
}

// New loads the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), opts), nil
}

func newStore(api putObjectAPI, opts Options) *Store {
	opts.Prefix = strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	opts.KMSKeyID = strings.TrimSpace(opts.KMSKeyID)
	return &Store{api: api, opts: opts}
}

func (s *Store) Save(ctx context.Context, p object.Photo) (string, error) {
	key := s.objectKey(p.Key())
	sum := sha256.Sum256(p.Data)

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(p.Data),
		ContentLength: aws.Int64(int64(len(p.Data))),
		Metadata: map[string]string{
			"analysis-id": p.AnalysisID,
			"sha256":      hex.EncodeToString(sum[:]),
		},
	}
	if p.ContentType != "" {
		in.ContentType = aws.String(p.ContentType)
	}
	if s.opts.KMSKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.opts.KMSKeyID)
	} else {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put bucket=%s key=%s: %w", s.opts.Bucket, key, err)
	}
	return key, nil
}

func (s *Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case s.opts.Prefix == "":
		return key
	case key == "":
		return s.opts.Prefix
	default:
		return s.opts.Prefix + "/" + key
	}
}

var _ object.Archive = (*Store)(nil)

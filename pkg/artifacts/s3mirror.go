package artifacts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Mirror is a SnapshotMirror backed by an S3 bucket, adapted from the
// content-addressed put/head shape of an S3-backed artifact store.
type S3Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3MirrorConfig configures an S3Mirror.
type S3MirrorConfig struct {
	Bucket   string
	Region   string
	Endpoint string // optional custom endpoint (MinIO, LocalStack)
	Prefix   string
}

// NewS3Mirror builds an S3Mirror, loading AWS credentials the default way
// (environment, shared config, instance role).
func NewS3Mirror(ctx context.Context, cfg S3MirrorConfig) (*S3Mirror, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3 mirror: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Mirror{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Store uploads data keyed by its SHA-256 hash, skipping the upload if an
// object already exists under that key.
func (m *S3Mirror) Store(ctx context.Context, data []byte) (string, error) {
	hashHex := HashBytes(data)
	key := m.prefix + hashHex + ".blob"

	if _, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	}); err == nil {
		return "sha256:" + hashHex, nil
	}

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 mirror: put %s: %w", key, err)
	}
	return "sha256:" + hashHex, nil
}

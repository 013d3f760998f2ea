// Package s3store wraps the object store holding raw uploaded documents.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO in local dev).
	Endpoint string
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.Bucket) != "" }

type Client interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Enabled() bool
}

type client struct {
	log    *logger.Logger
	cfg    Config
	bucket string
	s3     *s3.Client
}

func NewClient(ctx context.Context, cfg Config, baseLog *logger.Logger) (Client, error) {
	log := baseLog.With("service", "s3store")
	if !cfg.Enabled() {
		log.Warn("s3 bucket not configured, object store disabled")
		return &client{log: log, cfg: cfg}, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s3c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Info("s3 client ready", "bucket", cfg.Bucket, "region", cfg.Region)
	return &client{log: log, cfg: cfg, bucket: cfg.Bucket, s3: s3c}, nil
}

func (c *client) Enabled() bool { return c.s3 != nil }

func (c *client) Download(ctx context.Context, key string) ([]byte, error) {
	if c.s3 == nil {
		return nil, fmt.Errorf("%w: object store not configured", apperr.ErrConfig)
	}
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get object %q: %v", apperr.ErrUpstream, key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read object %q: %v", apperr.ErrUpstream, key, err)
	}
	return data, nil
}

func (c *client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if c.s3 == nil {
		return fmt.Errorf("%w: object store not configured", apperr.ErrConfig)
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: put object %q: %v", apperr.ErrUpstream, key, err)
	}
	return nil
}

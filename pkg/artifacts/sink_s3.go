package artifacts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"
)

// S3Sink implements Sink against AWS S3 (or an S3-compatible endpoint such
// as MinIO/LocalStack). Grounded on the teacher's pkg/artifacts.S3Store,
// with a rate limiter added ahead of every write/read so a misbehaving
// extractor loop can't run up a cloud bill — grounded on the teacher's
// rateLimitConfig in pkg/api/middleware.go.
type S3Sink struct {
	client  *s3.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
}

// S3SinkConfig holds the settings needed to construct an S3Sink.
type S3SinkConfig struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO/LocalStack
	Prefix   string
	RPS      float64 // requests/sec ceiling; 0 disables limiting
	Burst    int
}

// NewS3Sink creates an S3-backed Sink.
func NewS3Sink(ctx context.Context, cfg S3SinkConfig) (*S3Sink, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("artifacts: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		limiter: sinkLimiter(cfg.RPS, cfg.Burst),
	}, nil
}

func (s *S3Sink) key(kind Kind, digest string) (string, error) {
	hex, err := rawHex(digest)
	if err != nil {
		return "", err
	}
	return s.prefix + string(kind) + "/" + hex + ".blob", nil
}

func (s *S3Sink) Write(ctx context.Context, kind Kind, content []byte, metadata Metadata) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	digest := digestOf(content)
	key, err := s.key(kind, digest)
	if err != nil {
		return "", err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err == nil {
		return digest, nil // idempotent
	}

	metaMap := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		metaMap[k] = v
	}
	metaMap["sha256"] = digest

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    metaMap,
	})
	if err != nil {
		return "", fmt.Errorf("artifacts: s3 put failed: %w", err)
	}
	return digest, nil
}

func (s *S3Sink) Read(ctx context.Context, kind Kind, digest string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	key, err := s.key(kind, digest)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("artifacts: s3 get failed for %s: %w", digest, err)
	}
	defer func() { _ = out.Body.Close() }()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *S3Sink) Exists(ctx context.Context, kind Kind, digest string) (bool, error) {
	key, err := s.key(kind, digest)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	return err == nil, nil
}

// sinkLimiter builds a token-bucket limiter for cloud sink I/O. rps <= 0
// disables limiting (rate.Inf, no waiting).
func sinkLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

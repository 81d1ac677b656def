//go:build gcp

package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/time/rate"
)

// GCSSink implements Sink against Google Cloud Storage. Grounded on the
// teacher's pkg/artifacts.GCSStore, gated behind the same `gcp` build tag
// so the GCS SDK doesn't enter default builds.
type GCSSink struct {
	client  *storage.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
}

// GCSSinkConfig holds the settings needed to construct a GCSSink.
type GCSSinkConfig struct {
	Bucket string
	Prefix string
	RPS    float64
	Burst  int
}

// NewGCSSink creates a GCS-backed Sink (uses Application Default Credentials).
func NewGCSSink(ctx context.Context, cfg GCSSinkConfig) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifacts: create GCS client: %w", err)
	}
	return &GCSSink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, limiter: sinkLimiter(cfg.RPS, cfg.Burst)}, nil
}

func (s *GCSSink) object(kind Kind, digest string) (string, error) {
	hex, err := rawHex(digest)
	if err != nil {
		return "", err
	}
	return s.prefix + string(kind) + "/" + hex + ".blob", nil
}

func (s *GCSSink) Write(ctx context.Context, kind Kind, content []byte, metadata Metadata) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	digest := digestOf(content)
	objPath, err := s.object(kind, digest)
	if err != nil {
		return "", err
	}

	obj := s.client.Bucket(s.bucket).Object(objPath)
	if _, err := obj.Attrs(ctx); err == nil {
		return digest, nil // idempotent
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = map[string]string(metadata)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("artifacts: gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("artifacts: gcs close failed: %w", err)
	}
	return digest, nil
}

func (s *GCSSink) Read(ctx context.Context, kind Kind, digest string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	objPath, err := s.object(kind, digest)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(objPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifacts: gcs get failed for %s: %w", digest, err)
	}
	defer func() { _ = r.Close() }()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GCSSink) Exists(ctx context.Context, kind Kind, digest string) (bool, error) {
	objPath, err := s.object(kind, digest)
	if err != nil {
		return false, err
	}
	_, err = s.client.Bucket(s.bucket).Object(objPath).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("artifacts: gcs attrs error: %w", err)
	}
	return true, nil
}

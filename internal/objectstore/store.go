// Package objectstore wraps the S3-compatible object store used both as
// the image thumbnail cache's backing store (L4) and as the sink for
// the final published feed and report (L10).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"feedagg/internal/resilience/circuitbreaker"
	"feedagg/internal/resilience/retry"
)

// Store routes uploads and existence probes to public and private
// buckets on an S3-compatible endpoint.
type Store struct {
	client      *minio.Client
	pubBucket   string
	privBucket  string
	noUpload    bool
	breaker     *circuitbreaker.CircuitBreaker
}

// New builds a Store. When noUpload is true, every Upload and Exists
// call is a no-op that reports "not present, not uploaded" so a local
// run can skip the object store entirely.
func New(endpoint, accessKey, secretKey string, useSSL bool, pubBucket, privBucket string, noUpload bool) (*Store, error) {
	if noUpload {
		return &Store{pubBucket: pubBucket, privBucket: privBucket, noUpload: true}, nil
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	return &Store{
		client:     client,
		pubBucket:  pubBucket,
		privBucket: privBucket,
		breaker:    circuitbreaker.New(circuitbreaker.ObjectStoreConfig()),
	}, nil
}

// PublicBucket returns the bucket name the published feed and report
// upload to.
func (s *Store) PublicBucket() string { return s.pubBucket }

// PrivateBucket returns the bucket name cached thumbnail blobs upload
// to.
func (s *Store) PrivateBucket() string { return s.privBucket }

// NoUpload reports whether this Store was configured to skip every
// remote call.
func (s *Store) NoUpload() bool { return s.noUpload }

// Exists probes for an object's presence. A missing object is reported
// as (false, nil); any other error is a transient object-store problem
// the caller should treat as "try again next run".
func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if s.noUpload {
		return false, nil
	}

	var found bool
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, retry.WithBackoff(ctx, retry.ObjectStoreProbeConfig(), func() error {
			_, statErr := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
			if statErr == nil {
				found = true
				return nil
			}
			var errResp minio.ErrorResponse
			if errors.As(statErr, &errResp) && errResp.Code == "NoSuchKey" {
				found = false
				return nil
			}
			return statErr
		})
	})
	if err != nil {
		return false, fmt.Errorf("probe %s/%s: %w", bucket, key, err)
	}
	return found, nil
}

// Upload writes data to bucket/key, replacing any existing object.
func (s *Store) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if s.noUpload {
		return nil
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, retry.WithBackoff(ctx, retry.ObjectStoreProbeConfig(), func() error {
			_, putErr := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
				minio.PutObjectOptions{ContentType: contentType})
			return putErr
		})
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const readyAttempts = 10

// MinioStore is the MinIO-backed ObjectStore.
type MinioStore struct {
	cli *minio.Client
}

// MinioOptions carries the connection settings for NewMinioStore.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Buckets are checked at startup and created when absent.
	Buckets []string
}

// NewMinioStore builds a client and probes it until the endpoint is ready and
// the configured buckets exist. The endpoint may come up after us, so the
// probe retries with a growing sleep.
func NewMinioStore(ctx context.Context, opts MinioOptions, log zerolog.Logger) (*MinioStore, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	for i := 0; i < readyAttempts; i++ {
		err = ensureBuckets(ctx, cli, opts.Buckets)
		if err == nil {
			return &MinioStore{cli: cli}, nil
		}
		log.Warn().Err(err).Str("endpoint", opts.Endpoint).Msg("object store not ready, retrying")
		select {
		case <-time.After(time.Second * time.Duration(1+i)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("object store not ready: %w", err)
}

func ensureBuckets(ctx context.Context, cli *minio.Client, buckets []string) error {
	for _, bucket := range buckets {
		exists, err := cli.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStore) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.cli.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *MinioStore) Publish(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	r := bytes.NewReader(data)
	_, err := s.cli.PutObject(ctx, bucket, key, r, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

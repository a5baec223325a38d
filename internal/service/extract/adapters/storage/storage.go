// Package storage defines the object-storage boundary of the worker.
package storage

import "context"

// ObjectStore fetches input objects and publishes output objects by bucket
// and key. Implementations must be safe for use from the worker loop.
type ObjectStore interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
	Publish(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

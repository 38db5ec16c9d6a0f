// Package storage wraps the external object store that holds uploaded
// document bytes. The registry only sees opaque keys and URLs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by the fallback adapter used when no object
// storage credentials are present.
var ErrNotConfigured = errors.New("storage: object storage is not configured")

// ObjectStorage is the collaborator contract for uploaded document bytes.
type ObjectStorage interface {
	// Store writes data under key and returns the key actually used.
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// AccessURL returns a short-lived retrieval URL for key.
	AccessURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Unconfigured returns an adapter that fails every call. It lets the service
// start without storage credentials; upload and access paths surface the
// failure per request instead of the process refusing to boot.
func Unconfigured() ObjectStorage { return unconfigured{} }

type unconfigured struct{}

func (unconfigured) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", ErrNotConfigured
}

func (unconfigured) AccessURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrNotConfigured
}

package storage

import (
	"context"
	"io"
)

// Storage holds uploaded media payloads. Implementations return a public URL
// for the stored object; the service only ever redirects to it after a
// verified streaming descriptor.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

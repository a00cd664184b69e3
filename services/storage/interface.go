package storage

import (
	"context"
	"io"
)

// CloudStorage is the cloud object storage backend pose images are promoted
// to.
type CloudStorage interface {
	Upload(ctx context.Context, r io.Reader, name string) (objectID, url string, err error)
	Delete(ctx context.Context, objectID string) error
}

// LocalStore holds the device-local copies of offline-created images. Write
// returns StorageExhaustedError once the configured capacity is reached.
type LocalStore interface {
	Write(data []byte) (localID string, err error)
	Read(localID string) ([]byte, error)
	Delete(localID string) error
}

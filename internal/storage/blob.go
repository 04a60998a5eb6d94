package storage

import (
	"io"
	"time"
)

// BlobStore holds rendered artifacts. SignedURL is the presign
// operation: it mints a short-lived URL granting read access to one
// key, regenerated fresh on every call and never cached.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string, ttl time.Duration) (string, error)
}

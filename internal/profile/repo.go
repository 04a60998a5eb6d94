package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("result not found")

type Store interface {
	// SaveResult upserts by id. The profile payload is written wholesale;
	// artifact fields are left alone on conflict (AttachArtifact owns them).
	SaveResult(ctx context.Context, rec Record) error
	GetResult(ctx context.Context, id string) (Record, error)
	// GetResultByEmail returns the most recent record for the address.
	GetResultByEmail(ctx context.Context, email string) (Record, error)
	// AttachArtifact patches the artifact fields only. Idempotent:
	// repeating the same call leaves the record unchanged.
	AttachArtifact(ctx context.Context, id, pdfURL, storageKey string) error
}

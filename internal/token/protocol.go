// Package token implements the download-token protocol: an opaque
// high-entropy string binding a stored artifact to an expiring,
// redeemable link. Tokens outlive any single signed URL; redemption
// re-signs fresh every time.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound    = errors.New("download token not found")
	ErrExpired     = errors.New("download token expired")
	ErrPersistence = errors.New("token persistence failure")
)

// Token is immutable after issuance. A token is valid while
// now < ExpiresAt; the boundary instant itself counts as expired.
type Token struct {
	Token      string    `json:"token"`
	ResultID   string    `json:"result_id"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type Store interface {
	Insert(ctx context.Context, t Token) error
	// Get reports found=false for unknown tokens instead of an error so
	// the protocol can map absence and storage failure separately.
	Get(ctx context.Context, token string) (t Token, found bool, err error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Protocol struct {
	store Store
	now   func() time.Time
}

type Option func(*Protocol)

// WithClock fixes the time source, for expiry-boundary tests.
func WithClock(now func() time.Time) Option {
	return func(p *Protocol) { p.now = now }
}

func NewProtocol(store Store, opts ...Option) *Protocol {
	p := &Protocol{store: store, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Issue mints a 256-bit random token bound to {resultID, storageKey}
// and persists it. The store's unique key on the token column is the
// only serialization point; a rejected write (including a foreign-key
// violation for an unknown resultID) surfaces as ErrPersistence and the
// caller may retry with a fresh call.
func (p *Protocol) Issue(ctx context.Context, resultID, storageKey string, ttl time.Duration) (Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Token{}, fmt.Errorf("token entropy: %w", err)
	}
	now := p.now()
	t := Token{
		Token:      hex.EncodeToString(raw),
		ResultID:   resultID,
		StorageKey: storageKey,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := p.store.Insert(ctx, t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return t, nil
}

// Redeem looks the token up and enforces expiry. Redemption is
// idempotent: a valid token may be redeemed any number of times before
// it expires.
func (p *Protocol) Redeem(ctx context.Context, token string) (Token, error) {
	t, found, err := p.store.Get(ctx, token)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return Token{}, ErrNotFound
	}
	if !p.now().Before(t.ExpiresAt) {
		return Token{}, ErrExpired
	}
	return t, nil
}

// Reap deletes rows that are already past expiry. Purely hygienic:
// Redeem rejects expired tokens whether or not they are still stored.
func (p *Protocol) Reap(ctx context.Context) (int64, error) {
	return p.store.DeleteExpired(ctx, p.now())
}

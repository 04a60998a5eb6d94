package token

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	rows      map[string]Token
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]Token{}}
}

func (s *fakeStore) Insert(_ context.Context, t Token) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, dup := s.rows[t.Token]; dup {
		return errors.New("unique violation")
	}
	s.rows[t.Token] = t
	return nil
}

func (s *fakeStore) Get(_ context.Context, token string) (Token, bool, error) {
	t, ok := s.rows[token]
	return t, ok, nil
}

func (s *fakeStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, t := range s.rows {
		if t.ExpiresAt.Before(before) {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndRedeem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewProtocol(newFakeStore(), WithClock(fixedClock(now)))

	issued, err := p.Issue(context.Background(), "res-1", "mindprint-res-1.pdf", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(issued.Token) != 64 { // 32 bytes hex
		t.Fatalf("token length = %d, want 64", len(issued.Token))
	}
	if !issued.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expiry = %v", issued.ExpiresAt)
	}

	got, err := p.Redeem(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if got.StorageKey != "mindprint-res-1.pdf" || got.ResultID != "res-1" {
		t.Fatalf("redeemed = %+v", got)
	}

	// Redemption is idempotent before expiry.
	for i := 0; i < 3; i++ {
		if _, err := p.Redeem(context.Background(), issued.Token); err != nil {
			t.Fatalf("repeat redeem %d: %v", i, err)
		}
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	p := NewProtocol(newFakeStore())
	_, err := p.Redeem(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestZeroTTLIsImmediatelyExpired(t *testing.T) {
	// The boundary instant counts as expired: validity is now < expiresAt.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewProtocol(newFakeStore(), WithClock(fixedClock(now)))

	issued, err := p.Issue(context.Background(), "res-1", "k.pdf", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = p.Redeem(context.Background(), issued.Token)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestExpiryAdvancesWithClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	p := NewProtocol(newFakeStore(), WithClock(func() time.Time { return clock }))

	issued, err := p.Issue(context.Background(), "res-1", "k.pdf", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := p.Redeem(context.Background(), issued.Token); err != nil {
		t.Fatalf("redeem before expiry: %v", err)
	}

	clock = now.Add(time.Hour) // exactly the boundary
	if _, err := p.Redeem(context.Background(), issued.Token); !errors.Is(err, ErrExpired) {
		t.Fatalf("boundary err = %v, want ErrExpired", err)
	}
}

func TestIssueWrapsStoreFailure(t *testing.T) {
	s := newFakeStore()
	s.insertErr = errors.New("fk violation")
	p := NewProtocol(s)

	_, err := p.Issue(context.Background(), "missing-result", "k.pdf", time.Hour)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	p := NewProtocol(newFakeStore())
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		issued, err := p.Issue(context.Background(), "res-1", "k.pdf", time.Hour)
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if seen[issued.Token] {
			t.Fatalf("duplicate token at %d", i)
		}
		seen[issued.Token] = true
	}
}

func TestReapDeletesOnlyExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	s := newFakeStore()
	p := NewProtocol(s, WithClock(func() time.Time { return clock }))

	old, _ := p.Issue(context.Background(), "res-1", "k.pdf", time.Minute)
	fresh, _ := p.Issue(context.Background(), "res-1", "k.pdf", time.Hour)

	clock = now.Add(30 * time.Minute)
	n, err := p.Reap(context.Background())
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if n != 1 {
		t.Fatalf("reaped %d rows, want 1", n)
	}
	if _, found, _ := s.Get(context.Background(), old.Token); found {
		t.Fatal("expired token still stored")
	}
	if _, err := p.Redeem(context.Background(), fresh.Token); err != nil {
		t.Fatalf("fresh token after reap: %v", err)
	}
}

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadGrant covers every way a grant can fail verification: wrong
// signature, expired, malformed, or minted for a different key.
var ErrBadGrant = errors.New("invalid download grant")

// GrantSigner mints and verifies the HMAC-signed claims embedded in
// signed URLs. One signer is shared by the store (minting) and the
// files endpoint (verifying).
type GrantSigner struct {
	secret []byte
	now    func() time.Time
}

func NewGrantSigner(secret string) *GrantSigner {
	return &GrantSigner{secret: []byte(secret), now: time.Now}
}

type grantClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// Sign mints a grant for a single storage key, valid for ttl.
func (g *GrantSigner) Sign(key string, ttl time.Duration) (string, error) {
	now := g.now()
	claims := grantClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Verify checks the grant and returns the storage key it was minted for.
func (g *GrantSigner) Verify(grant string) (string, error) {
	var claims grantClaims
	tok, err := jwt.ParseWithClaims(grant, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !tok.Valid || claims.Key == "" {
		return "", ErrBadGrant
	}
	return claims.Key, nil
}

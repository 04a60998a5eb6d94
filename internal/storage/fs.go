package storage

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FSStore keeps blobs on the local filesystem and serves signed URLs
// through the gateway's /files endpoint, authorized by a GrantSigner
// grant in the query string.
type FSStore struct {
	base      string
	publicURL string
	signer    *GrantSigner
}

func NewFSStore(base, publicURL string, signer *GrantSigner) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicURL: publicURL, signer: signer}, nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	dst := filepath.Join(s.base, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, filepath.Clean(key)))
}

func (s *FSStore) SignedURL(key string, ttl time.Duration) (string, error) {
	grant, err := s.signer.Sign(key, ttl)
	if err != nil {
		return "", err
	}
	return s.publicURL + "/files/" + url.PathEscape(key) + "?grant=" + url.QueryEscape(grant), nil
}

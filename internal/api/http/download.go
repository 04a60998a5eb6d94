package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindprintlabs/mindprint-backend/internal/storage"
	"github.com/mindprintlabs/mindprint-backend/internal/token"
)

// DownloadHandler redeems a download token and redirects to a freshly
// signed URL. The four outcomes are distinct on the wire: 400 missing
// token, 404 unknown, 410 expired, 502 storage failure.
func DownloadHandler(tokens *token.Protocol, blobs storage.BlobStore, presignTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "token")
		if raw == "" {
			http.Error(w, "token required", 400)
			return
		}
		t, err := tokens.Redeem(r.Context(), raw)
		switch {
		case errors.Is(err, token.ErrNotFound):
			http.Error(w, "unknown token", 404)
			return
		case errors.Is(err, token.ErrExpired):
			http.Error(w, "token expired", 410)
			return
		case err != nil:
			http.Error(w, "redemption failed", 500)
			return
		}
		url, err := blobs.SignedURL(t.StorageKey, presignTTL)
		if err != nil {
			http.Error(w, "storage unavailable", 502)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// ReapTokensHandler deletes expired token rows. Hygiene only; expired
// tokens are rejected at redemption regardless.
func ReapTokensHandler(tokens *token.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := tokens.Reap(r.Context())
		if err != nil {
			http.Error(w, "reap failed", 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int64{"deleted": n})
	}
}

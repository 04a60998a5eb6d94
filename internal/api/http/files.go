package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindprintlabs/mindprint-backend/internal/storage"
)

// FilesHandler serves blobs addressed by signed-URL grants. This is the
// read side of the fs store's presign: the grant in the query string
// must verify and must have been minted for the requested key.
func FilesHandler(blobs storage.BlobStore, signer *storage.GrantSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		grant := r.URL.Query().Get("grant")
		if key == "" || grant == "" {
			http.Error(w, "key and grant required", 400)
			return
		}
		granted, err := signer.Verify(grant)
		if err != nil || granted != key {
			http.Error(w, "grant rejected", 403)
			return
		}
		rc, err := blobs.Get(key)
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.Copy(w, rc)
	}
}

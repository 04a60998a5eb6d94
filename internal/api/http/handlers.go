package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mindprintlabs/mindprint-backend/internal/pipeline"
	"github.com/mindprintlabs/mindprint-backend/internal/profile"
	"github.com/mindprintlabs/mindprint-backend/internal/scoring"
)

// SubmitQuizHandler validates the submission, scores it and persists
// the result synchronously, then hands the slow work (render, upload,
// token, notify) to the pipeline. Validation happens before any side
// effect.
func SubmitQuizHandler(store profile.Store, runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email   string          `json:"email"`
			Name    string          `json:"name"`
			Answers scoring.Answers `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Email == "" || len(req.Answers) == 0 {
			http.Error(w, "email and answers required", 400)
			return
		}

		p := scoring.Score(req.Answers)
		rec := profile.Record{
			ID:        uuid.NewString(),
			Email:     req.Email,
			Name:      req.Name,
			CoreType:  p.DecisionIdentity.Type,
			Subtype:   p.ExecutionSubtype.Dominant,
			Profile:   p,
			CreatedAt: time.Now(),
		}
		if err := store.SaveResult(r.Context(), rec); err != nil {
			http.Error(w, "could not save result", 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result_id": rec.ID,
			"profile":   p,
		})

		// The client already has its answer; everything after this is
		// fire-and-forget.
		runner.Enqueue(pipeline.Job{ResultID: rec.ID})
	}
}

// GetResultHandler looks up the most recent result for an email.
// pdf_ready is the polling answer for "is the report there yet".
func GetResultHandler(store profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			http.Error(w, "email required", 400)
			return
		}
		rec, err := store.GetResultByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				http.Error(w, "no result for email", 404)
				return
			}
			http.Error(w, "lookup failed", 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":    rec,
			"pdf_ready": rec.PDFReady(),
		})
	}
}

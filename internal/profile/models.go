package profile

import (
	"time"

	"github.com/mindprintlabs/mindprint-backend/internal/scoring"
)

// Record is one persisted quiz result. The profile payload is stored as
// opaque JSON; CoreType and Subtype are denormalized for indexing.
type Record struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	CoreType   string          `json:"core_type"`
	Subtype    string          `json:"subtype"`
	Profile    scoring.Profile `json:"profile"`
	PDFURL     string          `json:"pdf_url,omitempty"`
	StorageKey string          `json:"storage_key,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PDFReady reports whether the background pipeline has attached the
// rendered artifact yet. Callers polling before that see a well-defined
// "not ready" rather than an error.
func (r Record) PDFReady() bool {
	return r.PDFURL != "" && r.StorageKey != ""
}

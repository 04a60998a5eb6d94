package render

import (
	"context"
	"errors"

	"github.com/mindprintlabs/mindprint-backend/internal/profile"
)

// ErrRender wraps every failure mode of the rendering collaborator
// (browser crash, timeout, template error). Callers treat it as
// transient: the result record is never touched on failure.
var ErrRender = errors.New("pdf render failed")

// Renderer produces the PDF report for one result.
type Renderer interface {
	RenderPDF(ctx context.Context, rec profile.Record) ([]byte, error)
}

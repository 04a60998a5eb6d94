// Package pipeline runs the detached post-submission work: render the
// PDF, upload it, issue a download token and notify the marketing
// platform. Jobs are fire-once; a failed stage is logged and the job is
// dropped, it never reaches the submitter and never retries.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mindprintlabs/mindprint-backend/internal/notify"
	"github.com/mindprintlabs/mindprint-backend/internal/profile"
	"github.com/mindprintlabs/mindprint-backend/internal/render"
	"github.com/mindprintlabs/mindprint-backend/internal/storage"
	"github.com/mindprintlabs/mindprint-backend/internal/token"
)

// Job identifies one submission to process.
type Job struct {
	ResultID string
}

// jobTimeout bounds one whole job so a hung render or upload cannot pin
// a worker forever.
const jobTimeout = 2 * time.Minute

type Runner struct {
	store    profile.Store
	tokens   *token.Protocol
	blobs    storage.BlobStore
	renderer render.Renderer
	notifier notify.Notifier
	log      *zap.Logger

	tokenTTL   time.Duration
	presignTTL time.Duration
	publicURL  string

	jobs      chan Job
	closeOnce sync.Once
	group     *errgroup.Group
}

func NewRunner(store profile.Store, tokens *token.Protocol, blobs storage.BlobStore,
	renderer render.Renderer, notifier notify.Notifier, log *zap.Logger,
	tokenTTL, presignTTL time.Duration, publicURL string, queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		store:      store,
		tokens:     tokens,
		blobs:      blobs,
		renderer:   renderer,
		notifier:   notifier,
		log:        log,
		tokenTTL:   tokenTTL,
		presignTTL: presignTTL,
		publicURL:  publicURL,
		jobs:       make(chan Job, queueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until Close
// is called, then exit.
func (r *Runner) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}
	g, ctx := errgroup.WithContext(ctx)
	r.group = g
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for job := range r.jobs {
				r.run(ctx, job)
			}
			return nil
		})
	}
}

// Enqueue hands a job to the pool without blocking the request path.
// A full queue drops the job; that is the same log-and-drop contract as
// any other stage failure.
func (r *Runner) Enqueue(job Job) bool {
	select {
	case r.jobs <- job:
		return true
	default:
		r.log.Warn("pipeline queue full, dropping job", zap.String("result_id", job.ResultID))
		return false
	}
}

// Close stops intake and waits for in-flight jobs to finish.
func (r *Runner) Close() error {
	r.closeOnce.Do(func() { close(r.jobs) })
	if r.group == nil {
		return nil
	}
	return r.group.Wait()
}

// run executes all stages for one job. Each stage transition is logged
// so partial failures are diagnosable after the fact.
func (r *Runner) run(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	log := r.log.With(zap.String("result_id", job.ResultID))

	rec, err := r.store.GetResult(ctx, job.ResultID)
	if err != nil {
		log.Error("pipeline: load result", zap.Error(err))
		return
	}

	log.Info("render started")
	pdf, err := r.renderer.RenderPDF(ctx, rec)
	if err != nil {
		log.Error("render failed", zap.Error(err))
		return
	}
	log.Info("render done", zap.Int("bytes", len(pdf)))

	key := fmt.Sprintf("mindprint-%s.pdf", rec.ID)
	if _, err := r.blobs.Put(key, bytes.NewReader(pdf)); err != nil {
		log.Error("upload failed", zap.Error(err))
		return
	}
	// Signed URLs stay short-lived even though the token is days-valid;
	// redemption re-signs fresh anyway.
	pdfURL, err := r.blobs.SignedURL(key, r.presignTTL)
	if err != nil {
		log.Error("sign upload url failed", zap.Error(err))
		return
	}
	if err := r.store.AttachArtifact(ctx, rec.ID, pdfURL, key); err != nil {
		log.Error("attach artifact failed", zap.Error(err))
		return
	}
	log.Info("upload done", zap.String("key", key))

	t, err := r.tokens.Issue(ctx, rec.ID, key, r.tokenTTL)
	if err != nil {
		log.Error("token issue failed", zap.Error(err))
		return
	}
	log.Info("token issued", zap.Time("expires_at", t.ExpiresAt))

	link := r.publicURL + "/download/" + t.Token
	if err := r.notifier.Notify(ctx, rec.Email, rec.Name, link, map[string]string{
		"core_type": rec.CoreType,
		"subtype":   rec.Subtype,
	}); err != nil {
		// Best-effort by contract: the token is issued and redeemable
		// even when the notification never lands.
		log.Warn("notify failed", zap.Error(err))
		return
	}
	log.Info("notify done")
}

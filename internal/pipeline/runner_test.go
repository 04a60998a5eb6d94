package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindprintlabs/mindprint-backend/internal/profile"
	"github.com/mindprintlabs/mindprint-backend/internal/render"
	"github.com/mindprintlabs/mindprint-backend/internal/scoring"
	"github.com/mindprintlabs/mindprint-backend/internal/token"
)

type memStore struct {
	mu   sync.Mutex
	recs map[string]profile.Record
}

func newMemStore() *memStore { return &memStore{recs: map[string]profile.Record{}} }

func (s *memStore) SaveResult(_ context.Context, rec profile.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

func (s *memStore) GetResult(_ context.Context, id string) (profile.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return profile.Record{}, profile.ErrNotFound
	}
	return rec, nil
}

func (s *memStore) GetResultByEmail(_ context.Context, email string) (profile.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.recs {
		if rec.Email == email {
			return rec, nil
		}
	}
	return profile.Record{}, profile.ErrNotFound
}

func (s *memStore) AttachArtifact(_ context.Context, id, pdfURL, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return profile.ErrNotFound
	}
	rec.PDFURL = pdfURL
	rec.StorageKey = storageKey
	s.recs[id] = rec
	return nil
}

type memTokenStore struct {
	mu   sync.Mutex
	rows map[string]token.Token
}

func newMemTokenStore() *memTokenStore { return &memTokenStore{rows: map[string]token.Token{}} }

func (s *memTokenStore) Insert(_ context.Context, t token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.Token] = t
	return nil
}

func (s *memTokenStore) Get(_ context.Context, tok string) (token.Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[tok]
	return t, ok, nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type memBlobs struct {
	mu      sync.Mutex
	objs    map[string][]byte
	signTTL time.Duration
}

func newMemBlobs() *memBlobs { return &memBlobs{objs: map[string][]byte{}} }

func (b *memBlobs) Put(key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objs[key] = data
	return key, nil
}

func (b *memBlobs) Get(key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objs[key]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) SignedURL(key string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	b.signTTL = ttl
	b.mu.Unlock()
	return "https://blobs.test/" + key + "?sig=x", nil
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderPDF(_ context.Context, rec profile.Record) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 " + rec.ID), nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string // download links
	done  chan struct{}
	err   error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) Notify(_ context.Context, email, name, link string, meta map[string]string) error {
	n.mu.Lock()
	n.calls = append(n.calls, link)
	n.mu.Unlock()
	n.done <- struct{}{}
	return n.err
}

func (n *recordingNotifier) links() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func seed(t *testing.T, store *memStore, id string) {
	t.Helper()
	require.NoError(t, store.SaveResult(context.Background(), profile.Record{
		ID:      id,
		Email:   id + "@example.com",
		Name:    "Pipeline Test",
		Profile: scoring.Score(scoring.Answers{"L1_Q1": "a"}),
	}))
}

func TestRunnerHappyPath(t *testing.T) {
	store := newMemStore()
	seed(t, store, "res-1")
	blobs := newMemBlobs()
	notifier := newRecordingNotifier()
	tokens := token.NewProtocol(newMemTokenStore())

	r := NewRunner(store, tokens, blobs, stubRenderer{}, notifier, zaptest.NewLogger(t),
		7*24*time.Hour, 4*time.Hour, "https://app.test", 8)
	r.Start(context.Background(), 1)

	require.True(t, r.Enqueue(Job{ResultID: "res-1"}))

	select {
	case <-notifier.done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline never reached notify")
	}
	require.NoError(t, r.Close())

	rec, err := store.GetResult(context.Background(), "res-1")
	require.NoError(t, err)
	require.True(t, rec.PDFReady())
	require.Equal(t, "mindprint-res-1.pdf", rec.StorageKey)

	_, err = blobs.Get("mindprint-res-1.pdf")
	require.NoError(t, err)

	// The persisted pdf_url is signed with the short presign window,
	// never the days-scale token window.
	blobs.mu.Lock()
	require.Equal(t, 4*time.Hour, blobs.signTTL)
	blobs.mu.Unlock()

	links := notifier.links()
	require.Len(t, links, 1)
	require.True(t, strings.HasPrefix(links[0], "https://app.test/download/"), links[0])

	// The link embeds a redeemable token.
	raw := strings.TrimPrefix(links[0], "https://app.test/download/")
	redeemed, err := tokens.Redeem(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "res-1", redeemed.ResultID)
}

func TestRenderFailureIsDroppedNotFatal(t *testing.T) {
	store := newMemStore()
	seed(t, store, "res-1")
	seed(t, store, "res-2")
	notifier := newRecordingNotifier()
	tokens := token.NewProtocol(newMemTokenStore())

	// First runner wiring fails every render; the worker must survive it.
	failing := NewRunner(store, tokens, newMemBlobs(), stubRenderer{err: render.ErrRender},
		notifier, zaptest.NewLogger(t), time.Hour, time.Hour, "https://app.test", 8)
	failing.Start(context.Background(), 1)
	require.True(t, failing.Enqueue(Job{ResultID: "res-1"}))
	require.True(t, failing.Enqueue(Job{ResultID: "res-2"}))
	require.NoError(t, failing.Close())

	require.Empty(t, notifier.links())
	rec, err := store.GetResult(context.Background(), "res-1")
	require.NoError(t, err)
	require.False(t, rec.PDFReady(), "failed render must not attach an artifact")
}

func TestNotifyFailureDoesNotUndoToken(t *testing.T) {
	store := newMemStore()
	seed(t, store, "res-1")
	notifier := newRecordingNotifier()
	notifier.err = errors.New("webhook 500")
	tokenStore := newMemTokenStore()
	tokens := token.NewProtocol(tokenStore)

	r := NewRunner(store, tokens, newMemBlobs(), stubRenderer{}, notifier,
		zaptest.NewLogger(t), time.Hour, time.Hour, "https://app.test", 8)
	r.Start(context.Background(), 1)
	require.True(t, r.Enqueue(Job{ResultID: "res-1"}))
	require.NoError(t, r.Close())

	// Token issuance preceded the failed notification and stands.
	tokenStore.mu.Lock()
	defer tokenStore.mu.Unlock()
	require.Len(t, tokenStore.rows, 1)
}

type slowRenderer struct{ delay time.Duration }

func (r slowRenderer) RenderPDF(_ context.Context, rec profile.Record) ([]byte, error) {
	time.Sleep(r.delay)
	return []byte("%PDF-1.4 " + rec.ID), nil
}

func TestCloseDrainsQueuedJobs(t *testing.T) {
	store := newMemStore()
	ids := []string{"res-1", "res-2", "res-3"}
	for _, id := range ids {
		seed(t, store, id)
	}
	notifier := newRecordingNotifier()
	tokens := token.NewProtocol(newMemTokenStore())

	r := NewRunner(store, tokens, newMemBlobs(), slowRenderer{delay: 20 * time.Millisecond},
		notifier, zaptest.NewLogger(t), time.Hour, 4*time.Hour, "https://app.test", 8)
	r.Start(context.Background(), 1)
	for _, id := range ids {
		require.True(t, r.Enqueue(Job{ResultID: id}))
	}

	// Close must block until every queued job has run to completion.
	require.NoError(t, r.Close())
	for _, id := range ids {
		rec, err := store.GetResult(context.Background(), id)
		require.NoError(t, err)
		require.True(t, rec.PDFReady(), "job %s abandoned by Close", id)
	}
	require.Len(t, notifier.links(), len(ids))
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	store := newMemStore()
	notifier := newRecordingNotifier()
	tokens := token.NewProtocol(newMemTokenStore())

	r := NewRunner(store, tokens, newMemBlobs(), stubRenderer{}, notifier,
		zaptest.NewLogger(t), time.Hour, time.Hour, "https://app.test", 1)
	// No workers started: the queue holds exactly one job.
	require.True(t, r.Enqueue(Job{ResultID: "a"}))
	require.False(t, r.Enqueue(Job{ResultID: "b"}))
}

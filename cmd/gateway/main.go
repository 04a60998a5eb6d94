package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	api "github.com/mindprintlabs/mindprint-backend/internal/api/http"
	"github.com/mindprintlabs/mindprint-backend/internal/config"
	"github.com/mindprintlabs/mindprint-backend/internal/db"
	"github.com/mindprintlabs/mindprint-backend/internal/notify"
	"github.com/mindprintlabs/mindprint-backend/internal/pipeline"
	"github.com/mindprintlabs/mindprint-backend/internal/profile"
	"github.com/mindprintlabs/mindprint-backend/internal/render"
	"github.com/mindprintlabs/mindprint-backend/internal/storage"
	"github.com/mindprintlabs/mindprint-backend/internal/token"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer dbh.Close()

	store := profile.NewSQLStore(dbh)
	tokens := token.NewProtocol(token.NewSQLStore(dbh))

	// --- Blob store ---
	signer := storage.NewGrantSigner(cfg.SigningSecret)
	bs, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL, signer)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}

	// --- Collaborators + pipeline ---
	renderer := render.NewChromeRenderer(cfg.ChromeBin)
	defer renderer.Shutdown()
	notifier := notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout)

	runner := pipeline.NewRunner(store, tokens, bs, renderer, notifier, logger,
		cfg.TokenTTL, cfg.PresignTTL, cfg.PublicURL, cfg.PipelineQueue)
	runner.Start(context.Background(), cfg.PipelineWorkers)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/quiz/submit", api.SubmitQuizHandler(store, runner))
	r.Get("/api/results", api.GetResultHandler(store))
	r.Post("/api/tokens/reap", api.ReapTokensHandler(tokens))

	// Public redemption + signed file serving. The bare /download route
	// exists so a missing token reports 400 rather than a routing 404.
	r.Get("/download", api.DownloadHandler(tokens, bs, cfg.PresignTTL))
	r.Get("/download/{token}", api.DownloadHandler(tokens, bs, cfg.PresignTTL))
	r.Get("/files/{key}", api.FilesHandler(bs, signer))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Block in main so the drain finishes before the deferred closes
	// (renderer, db) run: in-flight pipeline jobs still need both.
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server", zap.Error(err))
		}
	case <-stop:
		logger.Info("shutting down")
		shCtx, shCancel := context.WithTimeout(context.Background(), 15*time.Second)
		_ = srv.Shutdown(shCtx)
		shCancel()
	}
	if err := runner.Close(); err != nil {
		logger.Error("pipeline drain", zap.Error(err))
	}
}

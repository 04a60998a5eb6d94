package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobDriver   string // fs
	BlobBasePath string

	// SigningSecret signs download grants minted for blob access.
	SigningSecret string

	// TokenTTL is the validity window of a download token (days-scale).
	// PresignTTL is the validity window of a single signed URL (hours-scale).
	TokenTTL   time.Duration
	PresignTTL time.Duration

	WebhookURL     string
	WebhookTimeout time.Duration

	// ChromeBin overrides the browser binary used for PDF rendering.
	// Empty means let the launcher find one.
	ChromeBin string

	PipelineWorkers int
	PipelineQueue   int

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	pub := strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/")
	if pub == "" {
		pub = "http://localhost:8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: pub,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobDriver:   envOr("BLOB_DRIVER", "fs"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		SigningSecret: envOr("SIGNING_SECRET", "dev-signing-secret"),

		TokenTTL:   envDur("DOWNLOAD_TOKEN_TTL", 7*24*time.Hour),
		PresignTTL: envDur("PRESIGN_TTL", 4*time.Hour),

		WebhookURL:     os.Getenv("MARKETING_WEBHOOK_URL"),
		WebhookTimeout: envDur("WEBHOOK_TIMEOUT", 10*time.Second),

		ChromeBin: os.Getenv("CHROME_BIN"),

		PipelineWorkers: envInt("PIPELINE_WORKERS", 2),
		PipelineQueue:   envInt("PIPELINE_QUEUE", 64),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

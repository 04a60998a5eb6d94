// Package notify delivers the "report ready" event to the external
// marketing platform. Delivery is best-effort: callers log failures and
// move on, the original submitter is never blocked on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Notifier interface {
	Notify(ctx context.Context, email, name, downloadLink string, meta map[string]string) error
}

// WebhookNotifier posts a JSON payload to a configured endpoint with a
// bounded timeout so the detached pipeline task cannot hang on it.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookPayload struct {
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	DownloadLink string            `json:"download_link"`
	Meta         map[string]string `json:"meta,omitempty"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, email, name, downloadLink string, meta map[string]string) error {
	if n.url == "" {
		return nil // not configured, nothing to deliver
	}
	body, err := json.Marshal(webhookPayload{Email: email, Name: name, DownloadLink: downloadLink, Meta: meta})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

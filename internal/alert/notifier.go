// Package alert reports ingest-path failures to an operator channel.
// Notifications are fire-and-forget; a broken channel never affects
// request handling.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Notifier pushes a human-readable failure message to operators.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NopNotifier is used when no alert channel is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}

// WebhookNotifier posts messages to a chat webhook. Delivery is
// best-effort with a short timeout; failures are logged and dropped.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, message string) {
	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		slog.Error("[Alert] Failed to marshal notification", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("[Alert] Failed to build notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Error("[Alert] Failed to deliver notification", "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		slog.Error("[Alert] Notification rejected",
			"status", resp.StatusCode, "url", n.url)
	}
}

// FormatFailure builds the standard alert line for a failed pipeline
// stage.
func FormatFailure(stage, service string, err error) string {
	return fmt.Sprintf("loglens: %s failed for service %q: %v", stage, service, err)
}

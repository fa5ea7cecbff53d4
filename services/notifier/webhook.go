package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dealsniper/logger"
)

// WebhookNotifier posts payloads as JSON to a webhook endpoint. Sends are
// serialized with a mutex so pollers may call it concurrently.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	log        *logger.Logger
	mu         sync.Mutex
}

// NewWebhookNotifier creates a notifier for one webhook URL.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        logger.ForNotifier(),
	}
}

// Send delivers one payload. It returns false on any failure; it never
// retries and never panics.
func (n *WebhookNotifier) Send(ctx context.Context, payload Payload) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Msg("Failed to marshal payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Msg("Failed to create webhook request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dealsniper/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error().Err(err).Msg("Webhook request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		n.log.Warn().
			Str("retry_after", resp.Header.Get("Retry-After")).
			Msg("Webhook rate limit hit")
		return false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Error().Int("status", resp.StatusCode).Msg("Webhook returned error status")
		return false
	}

	n.log.Debug().Int("status", resp.StatusCode).Msg("Sent payload to webhook")
	return true
}

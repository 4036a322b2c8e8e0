// Package notify provides NotificationGateway adapters.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/example/pulse/internal/ports/secondary"
)

// WebhookGateway posts each notification as JSON to an HTTP endpoint.
// Any 2xx response counts as accepted.
type WebhookGateway struct {
	endpoint string
	token    string
	from     string
	client   *http.Client
}

// NewWebhookGateway creates a gateway for endpoint. token may be empty.
func NewWebhookGateway(endpoint, token, from string) *WebhookGateway {
	return &WebhookGateway{
		endpoint: endpoint,
		token:    token,
		from:     from,
		client:   &http.Client{},
	}
}

type webhookPayload struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send delivers n. Deadlines come from ctx.
func (g *WebhookGateway) Send(ctx context.Context, n secondary.Notification) error {
	payload, err := json.Marshal(webhookPayload{
		From:    g.from,
		To:      n.To,
		Subject: n.Subject,
		Body:    n.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// Ensure WebhookGateway implements the interface
var _ secondary.NotificationGateway = (*WebhookGateway)(nil)

package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yury-opolev/safeexchange-sub000/internal/outbox/domain"
)

// EventTypeHeader carries the outbox event type on webhook deliveries.
const EventTypeHeader = "X-Event-Type"

// WebhookEventProcessor delivers outbox events as JSON POSTs to a configured
// webhook endpoint.
type WebhookEventProcessor struct {
	client     *http.Client
	webhookURL string
	logger     *slog.Logger
}

// NewWebhookEventProcessor creates a new WebhookEventProcessor.
func NewWebhookEventProcessor(client *http.Client, webhookURL string, logger *slog.Logger) *WebhookEventProcessor {
	return &WebhookEventProcessor{
		client:     client,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

// Process posts the event payload to the webhook endpoint. Any non-2xx
// response counts as a delivery failure and triggers a retry.
func (p *WebhookEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader([]byte(event.Payload)))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventTypeHeader, event.EventType)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook delivery rejected with status %d", resp.StatusCode)
	}

	p.logger.Info("delivered webhook notification",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
	)
	return nil
}

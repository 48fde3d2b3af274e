package usecase

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yury-opolev/safeexchange-sub000/internal/outbox/domain"
)

func TestWebhookEventProcessorProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	event := &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventTypeAccessRequestCreated,
		Payload:   `{"request_id":"r1","secret_name":"payroll-db"}`,
		Status:    domain.OutboxEventStatusPending,
	}

	t.Run("posts the payload with content type and event type headers", func(t *testing.T) {
		var gotBody []byte
		var gotContentType, gotEventType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			gotBody = body
			gotContentType = r.Header.Get("Content-Type")
			gotEventType = r.Header.Get(EventTypeHeader)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		processor := NewWebhookEventProcessor(server.Client(), server.URL, logger)
		err := processor.Process(context.Background(), event)

		assert.NoError(t, err)
		assert.JSONEq(t, event.Payload, string(gotBody))
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "access_request.created", gotEventType)
	})

	t.Run("non-2xx response is a delivery failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		processor := NewWebhookEventProcessor(server.Client(), server.URL, logger)
		err := processor.Process(context.Background(), event)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("unreachable endpoint is a delivery failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		processor := NewWebhookEventProcessor(http.DefaultClient, server.URL, logger)
		err := processor.Process(context.Background(), event)

		assert.Error(t, err)
	})
}

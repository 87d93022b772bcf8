package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier(WebhookConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestWebhookNotifier_PostsPayload(t *testing.T) {
	var received WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	alert := Alert{ID: "alert-1", MedicineID: "med-1", Slot: 2}
	alert.Notification.Tag = "med-med-1-2"

	require.NoError(t, notifier.Notify(context.Background(), "user-1", alert))
	assert.Equal(t, "user-1", received.UserID)
	assert.Equal(t, "med-med-1-2", received.Alert.Notification.Tag)
}

func TestWebhookNotifier_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{
		URL:              server.URL,
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, notifier.Notify(ctx, "user-1", Alert{}))
	assert.Error(t, notifier.Notify(ctx, "user-1", Alert{}))
	assert.Equal(t, gobreaker.StateOpen, notifier.State())

	err = notifier.Notify(ctx, "user-1", Alert{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load(), "open breaker fails fast")
}

package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// WebhookPayload is the body POSTed to the outbound notification webhook
type WebhookPayload struct {
	UserID string `json:"user_id"`
	Alert  Alert  `json:"alert"`
}

// WebhookConfig holds webhook notifier configuration
type WebhookConfig struct {
	URL              string
	Timeout          time.Duration
	FailureThreshold uint32        // consecutive failures that open the breaker
	OpenTimeout      time.Duration // time the breaker stays open before probing
}

// WebhookNotifier POSTs alerts to an external endpoint through a circuit breaker
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *zap.Logger
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(config WebhookConfig, logger *zap.Logger) (*WebhookNotifier, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = time.Minute
	}

	threshold := config.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "notification-webhook",
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("webhook circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &WebhookNotifier{
		url:     config.URL,
		client:  &http.Client{Timeout: config.Timeout},
		breaker: breaker,
		logger:  logger,
	}, nil
}

// Notify POSTs the alert. It fails fast while the breaker is open.
func (w *WebhookNotifier) Notify(ctx context.Context, userID string, alert Alert) error {
	body, err := json.Marshal(WebhookPayload{UserID: userID, Alert: alert})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.post(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("failed to notify webhook: %w", err)
	}

	return nil
}

// State returns the breaker state
func (w *WebhookNotifier) State() gobreaker.State {
	return w.breaker.State()
}

func (w *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}

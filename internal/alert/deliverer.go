package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// Delivery channel names used in logs and metrics
const (
	ChannelTone         = "tone"
	ChannelNotification = "notification"
	ChannelWebhook      = "webhook"
)

// PreferenceSource reads a user's notification sound preference
type PreferenceSource interface {
	NotificationSound(ctx context.Context, userID string) (string, error)
}

// Notifier forwards an alert outside the process
type Notifier interface {
	Notify(ctx context.Context, userID string, alert Alert) error
}

// DelivererConfig holds alert delivery configuration
type DelivererConfig struct {
	Urgent        bool   // play every tone twice
	ToneURLPrefix string // prefix of the route serving rendered tones
}

// Deliverer renders the tone and the notification for a due dose. Both channels are
// best-effort: failures are logged and counted, never returned.
type Deliverer struct {
	config   DelivererConfig
	prefs    PreferenceSource
	library  *Library
	feed     *Feed
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeliverer creates a new Deliverer. notifier may be nil.
func NewDeliverer(config DelivererConfig, prefs PreferenceSource, library *Library, feed *Feed, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Deliverer {
	if config.ToneURLPrefix == "" {
		config.ToneURLPrefix = "/api/alerts/tones/"
	}
	return &Deliverer{
		config:   config,
		prefs:    prefs,
		library:  library,
		feed:     feed,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// NewNotification builds the reminder notification for a dose
func NewNotification(dose model.DoseOccurrence) model.Notification {
	body := fmt.Sprintf("Time to take %s", dose.MedicineName)
	if dose.Dosage != "" {
		body = fmt.Sprintf("Time to take %s (%s)", dose.MedicineName, dose.Dosage)
	}

	return model.Notification{
		Title:              "💊 Medicine Reminder",
		Body:               body,
		Tag:                fmt.Sprintf("med-%s-%d", dose.MedicineID, dose.Slot),
		RequireInteraction: true,
	}
}

// Deliver implements reminder.Deliverer
func (d *Deliverer) Deliver(ctx context.Context, userID string, dose model.DoseOccurrence) {
	alert := Alert{
		ID:            uuid.NewString(),
		MedicineID:    dose.MedicineID,
		Slot:          dose.Slot,
		ScheduledTime: dose.ScheduledTime,
		Notification:  NewNotification(dose),
		CreatedAt:     d.now(),
	}

	d.safely(ChannelTone, userID, func() error {
		return d.attachTone(ctx, userID, &alert)
	})

	d.safely(ChannelNotification, userID, func() error {
		d.feed.Publish(userID, alert)
		return nil
	})

	if d.notifier != nil {
		d.safely(ChannelWebhook, userID, func() error {
			return d.notifier.Notify(ctx, userID, alert)
		})
	}
}

// attachTone resolves the preference and makes sure the tone is rendered before the cue is published
func (d *Deliverer) attachTone(ctx context.Context, userID string, alert *Alert) error {
	preference, err := d.prefs.NotificationSound(ctx, userID)
	if err != nil {
		d.logger.Warn("failed to read notification sound, using default",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		preference = ""
	}

	tone, ok := Resolve(preference, d.config.Urgent)
	if !ok {
		return nil
	}

	if _, err := d.library.WAV(ctx, tone); err != nil {
		return err
	}

	alert.Tone = tone.Name
	alert.ToneURL = d.config.ToneURLPrefix + tone.Name
	return nil
}

func (d *Deliverer) safely(channel, userID string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("alert channel panicked",
				zap.String("channel", channel),
				zap.String("user_id", userID),
				zap.Any("panic", r),
			)
			d.metrics.DeliveryFailed(channel)
		}
	}()

	if err := fn(); err != nil {
		d.logger.Warn("alert delivery failed",
			zap.String("channel", channel),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		d.metrics.DeliveryFailed(channel)
	}
}

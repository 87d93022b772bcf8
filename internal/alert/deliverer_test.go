package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/medimind-backend/internal/azure"
	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

type MockPreferenceSource struct {
	mock.Mock
}

func (m *MockPreferenceSource) NotificationSound(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, alert Alert) error {
	args := m.Called(ctx, userID, alert)
	return args.Error(0)
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(ctx context.Context, userID string, alert Alert) error {
	panic("webhook exploded")
}

var aspirinDose = model.DoseOccurrence{
	MedicineID:    "med-1",
	Slot:          2,
	MedicineName:  "Aspirin",
	Dosage:        "100mg",
	ScheduledTime: "14:00",
}

func newTestDeliverer(prefs PreferenceSource, notifier Notifier, config DelivererConfig) (*Deliverer, *Feed, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	feed := NewFeed(10)
	library := NewLibrary(azure.NewMockBlobStorageClient(nil), 8000, zap.NewNop())
	return NewDeliverer(config, prefs, library, feed, notifier, metrics.New(reg), zap.NewNop()), feed, reg
}

func TestNewNotification(t *testing.T) {
	n := NewNotification(aspirinDose)

	assert.Equal(t, "💊 Medicine Reminder", n.Title)
	assert.Equal(t, "Time to take Aspirin (100mg)", n.Body)
	assert.Equal(t, "med-med-1-2", n.Tag)
	assert.True(t, n.RequireInteraction)

	n = NewNotification(model.DoseOccurrence{MedicineID: "m", Slot: 1, MedicineName: "Vitamin D"})
	assert.Equal(t, "Time to take Vitamin D", n.Body)
}

func TestDeliverer_PublishesToneCueAndNotification(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("bell", nil)

	deliverer, feed, _ := newTestDeliverer(prefs, nil, DelivererConfig{})
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)

	alerts := feed.Drain("user-1")
	require.Len(t, alerts, 1)
	assert.Equal(t, "bell", alerts[0].Tone)
	assert.Equal(t, "/api/alerts/tones/bell", alerts[0].ToneURL)
	assert.Equal(t, "med-med-1-2", alerts[0].Notification.Tag)
	assert.Equal(t, "14:00", alerts[0].ScheduledTime)
	assert.NotEmpty(t, alerts[0].ID)
}

func TestDeliverer_PreferenceReadOnEveryDelivery(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("gentle", nil).Once()
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("melody", nil).Once()

	deliverer, feed, _ := newTestDeliverer(prefs, nil, DelivererConfig{})
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)

	alerts := feed.Drain("user-1")
	require.Len(t, alerts, 2)
	assert.Equal(t, "gentle", alerts[0].Tone)
	assert.Equal(t, "melody", alerts[1].Tone)
	prefs.AssertExpectations(t)
}

func TestDeliverer_NoneSuppressesToneOnly(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("none", nil)

	deliverer, feed, _ := newTestDeliverer(prefs, nil, DelivererConfig{Urgent: true})
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)

	alerts := feed.Drain("user-1")
	require.Len(t, alerts, 1)
	assert.Empty(t, alerts[0].Tone)
	assert.Empty(t, alerts[0].ToneURL)
}

func TestDeliverer_UrgentConfig(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("", nil)

	deliverer, feed, _ := newTestDeliverer(prefs, nil, DelivererConfig{Urgent: true})
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)

	alerts := feed.Drain("user-1")
	require.Len(t, alerts, 1)
	assert.Equal(t, "urgent", alerts[0].Tone)
}

func TestDeliverer_PreferenceErrorUsesDefault(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("", errors.New("db down"))

	deliverer, feed, _ := newTestDeliverer(prefs, nil, DelivererConfig{})
	deliverer.Deliver(context.Background(), "user-1", aspirinDose)

	alerts := feed.Drain("user-1")
	require.Len(t, alerts, 1)
	assert.Equal(t, "default", alerts[0].Tone)
}

func TestDeliverer_WebhookFailureIsSwallowed(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("", nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, "user-1", mock.AnythingOfType("alert.Alert")).Return(errors.New("timeout"))

	deliverer, feed, reg := newTestDeliverer(prefs, notifier, DelivererConfig{})

	assert.NotPanics(t, func() {
		deliverer.Deliver(context.Background(), "user-1", aspirinDose)
	})

	assert.Equal(t, 1, feed.Pending("user-1"))
	notifier.AssertExpectations(t)

	count, err := testutil.GatherAndCount(reg, "medimind_alert_delivery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeliverer_PanicsAreRecovered(t *testing.T) {
	prefs := new(MockPreferenceSource)
	prefs.On("NotificationSound", mock.Anything, "user-1").Return("", nil)

	deliverer, feed, reg := newTestDeliverer(prefs, panickingNotifier{}, DelivererConfig{})

	assert.NotPanics(t, func() {
		deliverer.Deliver(context.Background(), "user-1", aspirinDose)
	})
	assert.Equal(t, 1, feed.Pending("user-1"))

	count, err := testutil.GatherAndCount(reg, "medimind_alert_delivery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

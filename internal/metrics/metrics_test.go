package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReminderFired()
	m.ReminderFired()
	m.DeliveryFailed("tone")
	m.Claim("claimed")
	m.Claim("already_claimed")
	m.AchievementAwarded("perfect_day")
	m.AchievementRolledBack("perfect_medicine_day")
	m.ObserveRequest("GET", "/api/medicine/:userId", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.remindersFired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveryFailures.WithLabelValues("tone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues("claimed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievements.WithLabelValues("perfect_day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievementFailures.WithLabelValues("perfect_medicine_day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/medicine/:userId", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ReminderFired()
		m.ReminderFetchFailed()
		m.DeliveryFailed("notification")
		m.Claim("claimed")
		m.AchievementAwarded("perfect_day")
		m.AchievementRolledBack("perfect_day")
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})
}

// Package metrics exposes Prometheus collectors for reminders, alert delivery and gamification.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medimind"

// Metrics groups the application's Prometheus collectors
type Metrics struct {
	remindersFired       prometheus.Counter
	reminderFetchErrors  prometheus.Counter
	deliveryFailures     *prometheus.CounterVec
	claims               *prometheus.CounterVec
	achievements         *prometheus.CounterVec
	achievementFailures  *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpRequestDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		remindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Medicine reminders fired by the polling scheduler.",
		}),
		reminderFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_fetch_errors_total",
			Help:      "Reminder ticks that failed to read recipients or pending doses.",
		}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_delivery_failures_total",
			Help:      "Alert deliveries that failed, by channel.",
		}, []string{"channel"}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streak_claims_total",
			Help:      "Daily streak claim attempts, by result.",
		}, []string{"result"}),
		achievements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_awarded_total",
			Help:      "Once-per-day achievements awarded, by kind.",
		}, []string{"kind"}),
		achievementFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievement_persist_failures_total",
			Help:      "Achievement awards rolled back because the write failed, by kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.remindersFired,
			m.reminderFetchErrors,
			m.deliveryFailures,
			m.claims,
			m.achievements,
			m.achievementFailures,
			m.httpRequests,
			m.httpRequestDurations,
		)
	}

	return m
}

// ReminderFired counts one fired reminder
func (m *Metrics) ReminderFired() {
	if m == nil {
		return
	}
	m.remindersFired.Inc()
}

// ReminderFetchFailed counts one failed read during a reminder tick
func (m *Metrics) ReminderFetchFailed() {
	if m == nil {
		return
	}
	m.reminderFetchErrors.Inc()
}

// DeliveryFailed counts one failed delivery on channel
func (m *Metrics) DeliveryFailed(channel string) {
	if m == nil {
		return
	}
	m.deliveryFailures.WithLabelValues(channel).Inc()
}

// Claim counts one claim attempt with its result
func (m *Metrics) Claim(result string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(result).Inc()
}

// AchievementAwarded counts one awarded achievement
func (m *Metrics) AchievementAwarded(kind string) {
	if m == nil {
		return
	}
	m.achievements.WithLabelValues(kind).Inc()
}

// AchievementRolledBack counts one achievement whose write failed
func (m *Metrics) AchievementRolledBack(kind string) {
	if m == nil {
		return
	}
	m.achievementFailures.WithLabelValues(kind).Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDurations.WithLabelValues(method, route).Observe(duration.Seconds())
}

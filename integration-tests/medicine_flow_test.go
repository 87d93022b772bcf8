package integration_tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/azure"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

// TestMedicineAdherenceIntegration drives a user's day through the HTTP API
func TestMedicineAdherenceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	app, cleanup := newTestApp(t, ctx)
	defer cleanup()

	user := app.createUser(t, "bell")
	defer cleanupUser(t, ctx, app.db, user.ID)

	assert.Equal(t, model.LevelBronze, user.Level)
	assert.True(t, user.NotificationsEnabled)

	aspirin := app.addMedicine(t, user.ID, "Aspirin", "20:00", "08:00")
	vitamin := app.addMedicine(t, user.ID, "Vitamin D", "12:30")

	t.Run("today's schedule is ordered by time", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/medicine/today/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		schedule := decodeBody[[]model.DoseOccurrence](t, w)
		require.Len(t, schedule, 3)
		assert.Equal(t, "08:00", schedule[0].ScheduledTime)
		assert.Equal(t, "12:30", schedule[1].ScheduledTime)
		assert.Equal(t, "20:00", schedule[2].ScheduledTime)
	})

	t.Run("toggling every dose awards the perfect medicine day once", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/medicine/toggle/"+aspirin.ID+"/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		first := decodeBody[api.ToggleResponse](t, w)
		assert.True(t, first.Medicine.Slots[0].Taken)
		assert.Empty(t, first.Achievements)

		w = app.do(t, http.MethodPut, "/api/medicine/toggle/"+aspirin.ID+"/2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = app.do(t, http.MethodPut, "/api/medicine/toggle/"+vitamin.ID+"/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		last := decodeBody[api.ToggleResponse](t, w)
		assert.Equal(t, []string{"perfect_medicine_day"}, last.Achievements)

		w = app.do(t, http.MethodGet, "/api/medicine/summary/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decodeBody[model.AdherenceSummary](t, w)
		assert.Equal(t, 3, summary.TakenDoses)
		assert.Equal(t, 100, summary.AdherencePercentage)

		// Untake and retake: no second award on the same day
		app.do(t, http.MethodPut, "/api/medicine/toggle/"+vitamin.ID+"/1", nil)
		w = app.do(t, http.MethodPut, "/api/medicine/toggle/"+vitamin.ID+"/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		again := decodeBody[api.ToggleResponse](t, w)
		assert.Empty(t, again.Achievements)

		w = app.do(t, http.MethodGet, "/api/user/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		refreshed := decodeBody[model.User](t, w)
		assert.Equal(t, 1, refreshed.PerfectMedicineDays)
	})

	t.Run("toggling an unscheduled slot is rejected", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/medicine/toggle/"+vitamin.ID+"/3", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("eight glasses award the perfect day", func(t *testing.T) {
		var last api.HydrationResponse
		for i := 0; i < gamification.PerfectDayGlasses; i++ {
			w := app.do(t, http.MethodPost, "/api/hydration/"+user.ID+"/glass", nil)
			require.Equal(t, http.StatusOK, w.Code)
			last = decodeBody[api.HydrationResponse](t, w)
		}
		assert.Equal(t, gamification.PerfectDayGlasses, last.WaterIntake)
		assert.Contains(t, last.Achievements, "perfect_day")
	})

	t.Run("daily claim succeeds once", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/user/claim/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		claim := decodeBody[api.ClaimResponse](t, w)
		assert.Equal(t, 1, claim.Streak)
		assert.False(t, claim.CanClaimToday)

		w = app.do(t, http.MethodPost, "/api/user/claim/"+user.ID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("report is rendered and archived", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/medicine/report/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF", w.Body.String()[:4])

		filename := "adherence_" + user.ID + "_" + time.Now().Format("20060102") + ".pdf"
		archived, err := app.blobs.DownloadReport(ctx, azure.ReportBlobName(filename))
		require.NoError(t, err)
		assert.Equal(t, w.Body.Bytes(), archived)
	})

	t.Run("reset clears taken flags", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/medicine/reset/"+user.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		reset := decodeBody[api.ResetResponse](t, w)
		assert.Equal(t, int64(2), reset.MedicinesReset)

		w = app.do(t, http.MethodGet, "/api/medicine/summary/"+user.ID, nil)
		summary := decodeBody[model.AdherenceSummary](t, w)
		assert.Equal(t, 0, summary.TakenDoses)
	})

	t.Run("delete removes the medicine", func(t *testing.T) {
		w := app.do(t, http.MethodDelete, "/api/medicine/"+vitamin.ID, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(t, http.MethodDelete, "/api/medicine/"+vitamin.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = app.do(t, http.MethodGet, "/api/medicine/"+user.ID, nil)
		medicines := decodeBody[[]model.Medicine](t, w)
		require.Len(t, medicines, 1)
		assert.Equal(t, aspirin.ID, medicines[0].ID)
	})

	t.Run("audit trail records the operations", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/user/"+user.ID+"/audit?limit=100", nil)
		require.Equal(t, http.StatusOK, w.Code)

		entries := decodeBody[[]audit.Entry](t, w)
		operations := make(map[audit.OperationType]bool)
		for _, e := range entries {
			operations[e.OperationType] = true
		}
		for _, op := range []audit.OperationType{audit.OperationCreate, audit.OperationToggle, audit.OperationClaim, audit.OperationDelete} {
			assert.True(t, operations[op], "missing %s entry", op)
		}
	})
}

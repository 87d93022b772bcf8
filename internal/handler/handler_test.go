package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"go.uber.org/zap"
)

// testAPI wires every handler over testify mocks and a real alert feed
type testAPI struct {
	medicines *MockMedicineService
	reports   *MockReportService
	users     *MockUserService
	hydration *MockHydrationService
	tones     *MockToneSource
	db        *MockPinger
	feed      *alert.Feed
	router    *gin.Engine
}

func newTestAPI() *testAPI {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	a := &testAPI{
		medicines: new(MockMedicineService),
		reports:   new(MockReportService),
		users:     new(MockUserService),
		hydration: new(MockHydrationService),
		tones:     new(MockToneSource),
		db:        new(MockPinger),
		feed:      alert.NewFeed(alert.DefaultFeedCapacity),
		router:    gin.New(),
	}

	RegisterRoutes(a.router, Handlers{
		Medicine:  NewMedicineHandler(a.medicines, a.reports, logger),
		User:      NewUserHandler(a.users, logger),
		Hydration: NewHydrationHandler(a.hydration, logger),
		Alert:     NewAlertHandler(a.feed, a.tones, logger),
		Health:    NewHealthHandler(a.db, logger),
	})

	return a
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}


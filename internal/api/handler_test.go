package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/metrics"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/stats"
	"github.com/roach88/repledger/internal/store"
	"github.com/roach88/repledger/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testServer struct {
	router *mux.Router
	clock  *testutil.SteppingClock
	store  *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)
	m, reg := metrics.NewTestManagerAndRegistry()
	ids := testutil.NewSequentialIDGenerator("id")

	svc := recovery.NewService(st, recovery.Options{Location: time.UTC, IDs: ids, Logger: entry, Metrics: m})
	rec := meals.NewRecorder(st, svc, ids, model.ExerciseSquat, entry, m)
	clock := testutil.NewSteppingClock(time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC))

	return &testServer{
		router: NewRouter(NewHandler(svc, rec, stats.NewReporter(st, time.UTC, entry), clock), m, reg),
		clock:  clock,
		store:  st,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHandleCreateObligation(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/obligations", map[string]any{
		"meal_record_id": "meal-1",
		"exercise_type":  "Squats",
		"target_count":   20,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	o := decode[model.Obligation](t, rr)
	assert.Equal(t, model.ExerciseSquat, o.ExerciseType)
	assert.Equal(t, "2026-10-15", o.DueLocalDate)
	assert.Equal(t, "2026-10-12", o.WeekStartLocal)

	rr = s.do(t, "GET", "/status/today", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	today := decode[model.TodayObligationStatus](t, rr)
	assert.Equal(t, 1, today.OpenObligationCount)
	assert.Equal(t, 20, today.RemainingCount)

	rr = s.do(t, "GET", "/obligations/"+o.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, o.ID, decode[model.Obligation](t, rr).ID)
}

func TestHandleCreateObligation_BadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown exercise", map[string]any{"meal_record_id": "m", "exercise_type": "burpee", "target_count": 5}},
		{"missing meal", map[string]any{"exercise_type": "squat", "target_count": 5}},
		{"unknown field", map[string]any{"meal_record_id": "m", "exercise_type": "squat", "reps": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, "POST", "/obligations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleGetObligation_NotFound(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, "GET", "/obligations/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleFinish_OverflowPaysDebt(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/obligations", map[string]any{"meal_record_id": "m1", "exercise_type": "squat", "target_count": 10})
	require.Equal(t, http.StatusCreated, rr.Code)

	s.clock.Set(time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC))
	rr = s.do(t, "POST", "/sweep", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[model.SweepReport](t, rr)
	assert.Equal(t, 1, report.Unmet)
	assert.Equal(t, 1, report.EntriesCreated)

	rr = s.do(t, "POST", "/obligations", map[string]any{"meal_record_id": "m2", "exercise_type": "squat", "target_count": 5})
	require.Equal(t, http.StatusCreated, rr.Code)
	second := decode[model.Obligation](t, rr)

	rr = s.do(t, "POST", "/obligations/"+second.ID+"/finish", map[string]any{"count": 12})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 7, decode[leftoverResponse](t, rr).Leftover)

	rr = s.do(t, "GET", "/status/week", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	week := decode[model.WeeklyRecoveryStatus](t, rr)
	assert.Equal(t, "2026-10-12", week.WeekStartLocal)
	assert.Equal(t, 3, week.RemainingCount)
	assert.Equal(t, 10, week.GeneratedCount)
	assert.Equal(t, 7, week.ResolvedCount)

	rr = s.do(t, "GET", "/obligations/"+second.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[model.RestoreState](t, rr)
	assert.True(t, state.HasEvents)
	assert.Equal(t, model.SessionEnd, state.LastEventType)
	assert.Equal(t, 12, state.CountSnapshot)
}

func TestHandleProgressAndRecovery(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/obligations", map[string]any{"meal_record_id": "m1", "exercise_type": "pushup", "target_count": 8})
	require.Equal(t, http.StatusCreated, rr.Code)
	o := decode[model.Obligation](t, rr)

	rr = s.do(t, "POST", "/obligations/"+o.ID+"/progress", map[string]any{"count": 3})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[leftoverResponse](t, rr).Leftover)

	rr = s.do(t, "GET", "/obligations/open", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	open := decode[[]model.OpenObligation](t, rr)
	require.Len(t, open, 1)
	assert.Equal(t, 5, open[0].RemainingCount)

	rr = s.do(t, "PUT", "/obligations/"+o.ID+"/target", map[string]any{"exercise_type": "situp", "target_count": 4})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, "GET", "/status/today", nil)
	assert.Equal(t, 1, decode[model.TodayObligationStatus](t, rr).RemainingCount)

	// no debt yet, so recovery is a no-op
	rr = s.do(t, "POST", "/recovery", map[string]any{"count": 10})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHandleSessionEvent(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/obligations/ob-1/events", map[string]any{"event_type": "Pause", "count_snapshot": 4})
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = s.do(t, "GET", "/obligations/ob-1/restore", nil)
	state := decode[model.RestoreState](t, rr)
	assert.True(t, state.IsPaused)
	assert.Equal(t, 4, state.CountSnapshot)

	rr = s.do(t, "POST", "/obligations/ob-1/events", map[string]any{"event_type": "jump"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleMeals(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/meals", map[string]any{
		"food_name":          "Donut",
		"estimated_calories": 250,
		"confidence":         80,
		"decision":           "skipped",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, "POST", "/meals", map[string]any{
		"food_name":          "Pizza slice",
		"estimated_calories": 120,
		"decision":           "ate",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[meals.Result](t, rr)
	require.NotNil(t, res.Obligation)
	assert.Equal(t, 60, res.Obligation.TargetCount)
	assert.True(t, res.TooManyReps)

	rr = s.do(t, "GET", "/meals/savings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.SavingsSummary{Today: 250, ThisWeek: 250, ThisMonth: 250}, decode[model.SavingsSummary](t, rr))

	rr = s.do(t, "POST", "/meals", map[string]any{"food_name": "x", "decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStorageFailureIsRetryable(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Close())

	rr := s.do(t, "POST", "/obligations", map[string]any{"meal_record_id": "m", "exercise_type": "squat", "target_count": 5})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decode[errorResponse](t, rr)
	assert.True(t, resp.Retryable)
}

func TestMealStorageFailureIsRetryable(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Close())

	requests := []struct {
		method, path string
		body         any
	}{
		{"POST", "/meals", map[string]any{"food_name": "Donut", "decision": "skipped"}},
		{"POST", "/meals", map[string]any{"food_name": "Pizza", "decision": "ate"}},
		{"GET", "/meals", nil},
		{"GET", "/meals/savings", nil},
		{"GET", "/stats", nil},
	}
	for _, req := range requests {
		t.Run(req.method+" "+req.path, func(t *testing.T) {
			rr := s.do(t, req.method, req.path, req.body)
			require.Equal(t, http.StatusServiceUnavailable, rr.Code, rr.Body.String())
			assert.True(t, decode[errorResponse](t, rr).Retryable)
		})
	}
}

func TestHandleListMealsAndStats(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/meals", map[string]any{"food_name": "Donut", "estimated_calories": 250, "decision": "skipped"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(t, "POST", "/meals", map[string]any{"food_name": "Pizza", "estimated_calories": 285, "decision": "ate", "target_reps": 10})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ob := decode[meals.Result](t, rr).Obligation
	require.NotNil(t, ob)

	rr = s.do(t, "POST", "/obligations/"+ob.ID+"/finish", map[string]any{"count": 10})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, "GET", "/meals?decision=ate", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.MealRecord](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, ob.ID, list[0].ObligationID)

	rr = s.do(t, "GET", "/meals?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, "GET", "/stats?period=month", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode[model.Stats](t, rr)
	assert.Equal(t, model.StatsMonth, report.Period)
	assert.Equal(t, 250, report.TotalSavedCalories)
	assert.Equal(t, model.ChoiceRatio{AteCount: 1, SkippedCount: 1, Total: 2}, report.ChoiceRatio)
	assert.Equal(t, 1, report.Exercise.ByType[model.ExerciseSquat])
	assert.Equal(t, 5, report.Exercise.TotalCaloriesBurned)

	rr = s.do(t, "GET", "/stats?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleExercisesAndSessionLog(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "GET", "/exercises", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 3)

	s.do(t, "POST", "/obligations/ob-1/events", map[string]any{"event_type": "start"})
	s.do(t, "POST", "/obligations/ob-1/events", map[string]any{"event_type": "end", "count_snapshot": 7})

	rr = s.do(t, "GET", "/obligations/ob-1/events", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	events := decode[[]model.SessionEvent](t, rr)
	require.Len(t, events, 2)
	assert.Equal(t, model.SessionEnd, events[1].EventType)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, "GET", "/status/week", nil)
	rr := s.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `repledger_test_request{method="GET",status="200"}`)
}

func TestPanicRecovery(t *testing.T) {
	m := metrics.NewTestManager()
	r := mux.NewRouter()
	r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	r.Use(PanicRecovery())
	r.Use(RequestMetrics(m))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	srv := NewServer("127.0.0.1:0", s.router)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

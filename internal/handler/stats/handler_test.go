package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weightdomain "fittrack/internal/domain/weight"
	workoutdomain "fittrack/internal/domain/workout"
	"fittrack/internal/handler/middleware"
	"fittrack/internal/repository/memory"
	statsuc "fittrack/internal/usecase/stats"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	userID := uuid.New()

	workouts := memory.NewWorkoutRepository()
	weights := memory.NewWeightRepository()
	for i, d := range []string{"2024-03-11", "2024-03-12", "2024-02-20"} {
		w := &workoutdomain.Workout{ID: uuid.New(), UserID: userID, Date: day(d), Name: "W", CreatedAt: day(d)}
		w.Exercises = []workoutdomain.Exercise{{ID: uuid.New(), WorkoutID: w.ID, Name: "Squat", Sets: 1, Reps: 5, Weight: 100, Position: i}}
		require.NoError(t, workouts.Create(ctx, w))
	}
	for _, rec := range []struct {
		date   string
		weight float64
	}{{"2024-03-01", 81}, {"2024-03-12", 80.5}} {
		require.NoError(t, weights.Create(ctx, &weightdomain.Record{ID: uuid.New(), UserID: userID, Date: day(rec.date), Weight: rec.weight}))
	}

	h := NewHandler(statsuc.NewService(workouts, weights, statsuc.NewCache(4), nil, statsuc.Config{MonthsBack: 2}))
	h.now = func() time.Time { return day("2024-03-13") }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
	})
	r.GET("/stats/dashboard", h.Dashboard)
	r.GET("/stats/overview", h.Overview)
	r.GET("/stats/calendar", h.Calendar)
	r.GET("/stats/calendar/day", h.Day)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDashboard(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/stats/dashboard")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.TotalWorkouts)
	assert.Equal(t, 2, resp.WorkoutsThisWeek)
	assert.Equal(t, 3, resp.WeeklyGoal)
	assert.Equal(t, [7]bool{true, true}, resp.WeekDays)
	require.NotNil(t, resp.MostFrequentExercise)
	assert.Equal(t, "Squat", resp.MostFrequentExercise.Value)
	require.NotNil(t, resp.CurrentWeight)
	assert.Equal(t, 80.5, *resp.CurrentWeight)
	require.Len(t, resp.RecentWorkouts, 3)
	assert.Equal(t, "2024-03-12", resp.RecentWorkouts[0].Date)
}

func TestOverview(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/stats/overview")
	require.Equal(t, http.StatusOK, w.Code)

	var resp statsuc.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.WorkoutsThisMonth)
	require.NotNil(t, resp.WeightChange)
	assert.Equal(t, -0.5, *resp.WeightChange)
	require.Len(t, resp.Monthly, 3)
	assert.Equal(t, 2, resp.Streaks.Current)
}

func TestCalendar(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/stats/calendar")
	require.Equal(t, http.StatusOK, w.Code)
	var resp CalendarResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2024, resp.Year)
	assert.Equal(t, 3, resp.Month)
	require.Len(t, resp.Days, 3)
	assert.Equal(t, "2024-03-01", resp.Days[0].Date)
	assert.Empty(t, resp.Days[0].Workouts)
	assert.Len(t, resp.Days[0].Weights, 1)
	assert.Equal(t, "2024-03-12", resp.Days[2].Date)
	assert.Len(t, resp.Days[2].Workouts, 1)
	assert.Len(t, resp.Days[2].Weights, 1)

	w = get(r, "/stats/calendar?year=2024&month=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "2024-02-20", resp.Days[0].Date)

	for _, path := range []string{"/stats/calendar?month=13", "/stats/calendar?year=0", "/stats/calendar?month=x"} {
		w = get(r, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestDay(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/stats/calendar/day?date=2024-03-11")
	require.Equal(t, http.StatusOK, w.Code)
	var resp DayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Workouts, 1)
	assert.NotNil(t, resp.Weights)
	assert.Empty(t, resp.Weights)

	w = get(r, "/stats/calendar/day?date=2024-01-01")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Workouts)

	assert.Equal(t, http.StatusBadRequest, get(r, "/stats/calendar/day").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/stats/calendar/day?date=yesterday").Code)
}

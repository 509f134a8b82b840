package stats

import (
	"fittrack/internal/aggregation"
	"fittrack/internal/handler/request"
	weighthandler "fittrack/internal/handler/weight"
	workouthandler "fittrack/internal/handler/workout"
	statsuc "fittrack/internal/usecase/stats"
)

// DashboardResponse: сводка главной страницы.
type DashboardResponse struct {
	TotalWorkouts        int64                            `json:"total_workouts"`
	WorkoutsThisWeek     int                              `json:"workouts_this_week"`
	WeeklyGoal           int                              `json:"weekly_goal"`
	WeekDays             [7]bool                          `json:"week_days"`
	MostFrequentExercise *aggregation.Frequency           `json:"most_frequent_exercise"`
	CurrentWeight        *float64                         `json:"current_weight"`
	LatestWeightChange   *float64                         `json:"latest_weight_change"`
	RecentWorkouts       []workouthandler.WorkoutResponse `json:"recent_workouts"`
}

// DayResponse: события одного дня календаря.
type DayResponse struct {
	Date     string                           `json:"date"`
	Workouts []workouthandler.WorkoutResponse `json:"workouts"`
	Weights  []weighthandler.RecordResponse   `json:"weights"`
}

// CalendarResponse: дни месяца с событиями.
type CalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []DayResponse `json:"days"`
}

func toDashboardResponse(d *statsuc.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalWorkouts:        d.TotalWorkouts,
		WorkoutsThisWeek:     d.WorkoutsThisWeek,
		WeeklyGoal:           d.WeeklyGoal,
		WeekDays:             d.WeekDays,
		MostFrequentExercise: d.MostFrequentExercise,
		CurrentWeight:        d.CurrentWeight,
		LatestWeightChange:   d.LatestWeightChange,
		RecentWorkouts:       workouthandler.ToWorkoutResponses(d.RecentWorkouts),
	}
}

func toDayResponse(d statsuc.DayEvents) DayResponse {
	return DayResponse{
		Date:     d.Date.Format(request.DateLayout),
		Workouts: workouthandler.ToWorkoutResponses(d.Workouts),
		Weights:  weighthandler.ToRecordResponses(d.Weights),
	}
}

func toCalendarResponse(c *statsuc.Calendar) CalendarResponse {
	resp := CalendarResponse{
		Year:  c.Year,
		Month: int(c.Month),
		Days:  make([]DayResponse, 0, len(c.Days)),
	}
	for _, d := range c.Days {
		resp.Days = append(resp.Days, toDayResponse(d))
	}
	return resp
}

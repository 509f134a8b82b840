package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	weightdomain "fittrack/internal/domain/weight"
	workoutdomain "fittrack/internal/domain/workout"
	repo "fittrack/internal/repository/interfaces"
)

// ErrValidation оборачивает ошибки проверки входных данных.
var ErrValidation = errors.New("validation failed")

const recentWorkoutsLimit = 3

// Service описывает usecase-слой статистики.
type Service interface {
	Dashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error)
	Overview(ctx context.Context, userID uuid.UUID, now time.Time) (*Overview, error)
	// Calendar возвращает события месяца, сгруппированные по дням.
	Calendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*Calendar, error)
	Day(ctx context.Context, userID uuid.UUID, date time.Time) (*DayEvents, error)

	// UserDataChanged сбрасывает кэш статистики пользователя.
	UserDataChanged(userID uuid.UUID, kind string)
}

// Dashboard: сводка для главной страницы.
type Dashboard struct {
	TotalWorkouts        int64                   `json:"total_workouts"`
	WorkoutsThisWeek     int                     `json:"workouts_this_week"`
	WeeklyGoal           int                     `json:"weekly_goal"`
	WeekDays             [7]bool                 `json:"week_days"` // понедельник первым
	MostFrequentExercise *aggregation.Frequency  `json:"most_frequent_exercise"`
	CurrentWeight        *float64                `json:"current_weight"`
	LatestWeightChange   *float64                `json:"latest_weight_change"`
	RecentWorkouts       []workoutdomain.Workout `json:"recent_workouts"`
}

// Overview: данные страницы статистики.
type Overview struct {
	CurrentWeight        *float64                 `json:"current_weight"`
	WeightChange         *float64                 `json:"weight_change"`
	TotalWorkouts        int64                    `json:"total_workouts"`
	WorkoutsThisMonth    int                      `json:"workouts_this_month"`
	MostFrequentExercise *aggregation.Frequency   `json:"most_frequent_exercise"`
	ExerciseCounts       []aggregation.Frequency  `json:"exercise_counts"`
	Monthly              []aggregation.MonthCount `json:"monthly"`
	Streaks              aggregation.Streaks      `json:"streaks"`
}

// DayEvents: тренировки и записи веса одного дня.
type DayEvents struct {
	Date     time.Time               `json:"date"`
	Workouts []workoutdomain.Workout `json:"workouts"`
	Weights  []weightdomain.Record   `json:"weights"`
}

// Calendar: дни месяца, в которые есть события.
type Calendar struct {
	Year  int         `json:"year"`
	Month time.Month  `json:"month"`
	Days  []DayEvents `json:"days"`
}

// CacheMetrics считает попадания и промахи кэша.
type CacheMetrics interface {
	CacheHit(view string)
	CacheMiss(view string)
}

// Config задаёт параметры статистики.
type Config struct {
	WeeklyGoal int
	MonthsBack int
	CacheTTL   time.Duration
}

type service struct {
	workouts repo.WorkoutRepository
	weights  repo.WeightRepository
	cache    *Cache
	metrics  CacheMetrics
	cfg      Config
}

// NewService создаёт сервис статистики. cache и metrics могут быть nil.
func NewService(
	workouts repo.WorkoutRepository,
	weights repo.WeightRepository,
	cache *Cache,
	metrics CacheMetrics,
	cfg Config,
) Service {
	if cfg.WeeklyGoal <= 0 {
		cfg.WeeklyGoal = 3
	}
	if cfg.MonthsBack < 0 {
		cfg.MonthsBack = 0
	}
	return &service{
		workouts: workouts,
		weights:  weights,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (s *service) Dashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error) {
	key := "dashboard::" + aggregation.TruncateDay(now).Format(time.DateOnly)
	return cached(s, userID, "dashboard", key, func() (*Dashboard, error) {
		total, err := s.workouts.Count(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count workouts: %w", err)
		}
		dates, err := s.workouts.ListDates(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list workout dates: %w", err)
		}
		names, err := s.workouts.ListExerciseNames(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list exercise names: %w", err)
		}
		recent, err := s.workouts.List(ctx, userID, workoutdomain.ListParams{Limit: recentWorkoutsLimit})
		if err != nil {
			return nil, fmt.Errorf("list recent workouts: %w", err)
		}
		weights, err := s.weights.List(ctx, userID, weightdomain.ListParams{Ascending: true})
		if err != nil {
			return nil, fmt.Errorf("list weights: %w", err)
		}

		d := &Dashboard{
			TotalWorkouts:      total,
			WorkoutsThisWeek:   aggregation.CountInWeek(dates, now),
			WeeklyGoal:         s.cfg.WeeklyGoal,
			WeekDays:           aggregation.WeekdaysWithWorkouts(dates, now),
			LatestWeightChange: aggregation.LatestWeightChange(weights),
			RecentWorkouts:     recent,
		}
		if f, ok := aggregation.MostFrequent(names); ok {
			d.MostFrequentExercise = &f
		}
		d.CurrentWeight = aggregation.ComputeWeightTrend(weights).Current
		return d, nil
	})
}

func (s *service) Overview(ctx context.Context, userID uuid.UUID, now time.Time) (*Overview, error) {
	key := "overview::" + aggregation.TruncateDay(now).Format(time.DateOnly)
	return cached(s, userID, "overview", key, func() (*Overview, error) {
		total, err := s.workouts.Count(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count workouts: %w", err)
		}
		dates, err := s.workouts.ListDates(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list workout dates: %w", err)
		}
		names, err := s.workouts.ListExerciseNames(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list exercise names: %w", err)
		}
		weights, err := s.weights.List(ctx, userID, weightdomain.ListParams{Ascending: true})
		if err != nil {
			return nil, fmt.Errorf("list weights: %w", err)
		}

		trend := aggregation.ComputeWeightTrend(weights)
		o := &Overview{
			CurrentWeight:     trend.Current,
			TotalWorkouts:     total,
			WorkoutsThisMonth: aggregation.CountSince(dates, aggregation.StartOfMonth(now)),
			ExerciseCounts:    aggregation.CountByName(names),
			Monthly:           aggregation.MonthlyHistogram(dates, s.cfg.MonthsBack, now),
			Streaks:           aggregation.ComputeStreaks(dates),
		}
		// С одной записью изменения ещё нет.
		if len(weights) > 1 {
			o.WeightChange = trend.Change
		}
		if f, ok := aggregation.MostFrequent(names); ok {
			o.MostFrequentExercise = &f
		}
		return o, nil
	})
}

func (s *service) Calendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*Calendar, error) {
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year is out of range", ErrValidation)
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}

	key := fmt.Sprintf("calendar::%04d-%02d", year, month)
	return cached(s, userID, "calendar", key, func() (*Calendar, error) {
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)

		events, err := s.events(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}

		c := &Calendar{Year: year, Month: month, Days: []DayEvents{}}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if e, ok := events[d]; ok {
				c.Days = append(c.Days, *e)
			}
		}
		return c, nil
	})
}

func (s *service) Day(ctx context.Context, userID uuid.UUID, date time.Time) (*DayEvents, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	date = aggregation.TruncateDay(date)

	key := "day::" + date.Format(time.DateOnly)
	return cached(s, userID, "day", key, func() (*DayEvents, error) {
		events, err := s.events(ctx, userID, date, date)
		if err != nil {
			return nil, err
		}
		if e, ok := events[date]; ok {
			return e, nil
		}
		return &DayEvents{
			Date:     date,
			Workouts: []workoutdomain.Workout{},
			Weights:  []weightdomain.Record{},
		}, nil
	})
}

// events собирает тренировки и записи веса за [from, to] по дням.
func (s *service) events(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[time.Time]*DayEvents, error) {
	workouts, err := s.workouts.List(ctx, userID, workoutdomain.ListParams{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	weights, err := s.weights.List(ctx, userID, weightdomain.ListParams{From: &from, To: &to, Ascending: true})
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}

	byDay := make(map[time.Time]*DayEvents)
	get := func(t time.Time) *DayEvents {
		d := aggregation.TruncateDay(t)
		e, ok := byDay[d]
		if !ok {
			e = &DayEvents{
				Date:     d,
				Workouts: []workoutdomain.Workout{},
				Weights:  []weightdomain.Record{},
			}
			byDay[d] = e
		}
		return e
	}
	for _, w := range workouts {
		e := get(w.Date)
		e.Workouts = append(e.Workouts, w)
	}
	for _, r := range weights {
		e := get(r.Date)
		e.Weights = append(e.Weights, r)
	}
	return byDay, nil
}

func (s *service) UserDataChanged(userID uuid.UUID, _ string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}

// cached возвращает значение из кэша или вычисляет и сохраняет его.
func cached[T any](s *service, userID uuid.UUID, view, key string, compute func() (*T, error)) (*T, error) {
	if s.cache == nil {
		return compute()
	}

	entry := s.cache.Key(userID, key)
	var v T
	if s.cache.Get(entry, &v) {
		if s.metrics != nil {
			s.metrics.CacheHit(view)
		}
		return &v, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMiss(view)
	}

	res, err := compute()
	if err != nil {
		return nil, err
	}
	s.cache.Set(entry, res, s.cfg.CacheTTL)
	return res, nil
}

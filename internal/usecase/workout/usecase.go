package workout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/workout"
	repo "fittrack/internal/repository/interfaces"
)

// ErrValidation оборачивает ошибки проверки входных данных.
var ErrValidation = errors.New("validation failed")

const (
	maxNameLength      = 255
	maxDurationLength  = 64
	maxNotesLength     = 2000
	maxExercises       = 100
	maxSetsPerExercise = 100
	maxListLimit       = 200
	defaultListLimit   = 50

	// Границы подхода соответствуют колонкам exercise_sets (INT, NUMERIC(6,2)).
	maxSetReps   = 10000
	maxSetWeight = 9999.99
)

// ChangeNotifier получает уведомление после каждого изменения данных пользователя.
type ChangeNotifier interface {
	UserDataChanged(userID uuid.UUID, kind string)
}

// Service описывает usecase-слой тренировок.
type Service interface {
	// Create сохраняет тренировку с упражнениями и нормализованными подходами.
	Create(ctx context.Context, userID uuid.UUID, input Input) (*domain.Workout, error)

	// List возвращает страницу тренировок без упражнений, новые первыми.
	List(ctx context.Context, userID uuid.UUID, params domain.ListParams) (*Page, error)

	// Get возвращает тренировку с упражнениями и подходами. Упражнения без
	// сохранённых подходов получают подходы, построенные из сводки.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Workout, error)

	// Update обновляет поля тренировки и применяет правки упражнений атомарно.
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*domain.Workout, error)

	// Delete удаляет тренировку вместе с упражнениями и подходами.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Input описывает поля тренировки и её упражнения в том виде, в каком их вводит пользователь.
type Input struct {
	Date      time.Time
	Name      string
	Duration  string
	Notes     string
	Exercises []aggregation.ExerciseEdit
}

// Page: тренировки и фактически применённые limit/offset.
type Page struct {
	Workouts []domain.Workout
	Limit    int
	Offset   int
}

// UpdateInput дополняет Input явным списком удалённых упражнений.
type UpdateInput struct {
	Input
	DeletedExerciseIDs []uuid.UUID
}

type service struct {
	workouts repo.WorkoutRepository
	notifier ChangeNotifier
	now      func() time.Time
}

// NewService создаёт сервис тренировок. notifier может быть nil.
func NewService(workouts repo.WorkoutRepository, notifier ChangeNotifier) Service {
	return &service{
		workouts: workouts,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*domain.Workout, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	w := &domain.Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      aggregation.TruncateDay(input.Date),
		Name:      input.Name,
		Duration:  input.Duration,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.Exercises = aggregation.BuildExercises(w.ID, input.Exercises)
	for i := range w.Exercises {
		w.Exercises[i].CreatedAt = now
		w.Exercises[i].UpdatedAt = now
	}

	if err := s.workouts.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	s.changed(userID)
	return w, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params domain.ListParams) (*Page, error) {
	if params.Limit < 0 || params.Limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d", ErrValidation, maxListLimit)
	}
	if params.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}
	if params.Limit == 0 {
		params.Limit = defaultListLimit
	}
	workouts, err := s.workouts.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return &Page{Workouts: workouts, Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Workout, error) {
	w, err := s.workouts.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	for i := range w.Exercises {
		if len(w.Exercises[i].SetList) == 0 {
			w.Exercises[i].SetList = aggregation.SyntheticSets(w.Exercises[i])
		}
	}
	return w, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*domain.Workout, error) {
	normalized, err := normalizeInput(input.Input)
	if err != nil {
		return nil, err
	}

	original, err := s.workouts.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	plan := aggregation.ReconcileWorkoutEdit(id, original.Exercises, normalized.Exercises, input.DeletedExerciseIDs)
	now := s.now()
	for i := range plan.UpdateExercises {
		plan.UpdateExercises[i].UpdatedAt = now
	}
	for i := range plan.InsertExercises {
		plan.InsertExercises[i].CreatedAt = now
		plan.InsertExercises[i].UpdatedAt = now
	}

	w := &domain.Workout{
		ID:        id,
		UserID:    userID,
		Date:      aggregation.TruncateDay(normalized.Date),
		Name:      normalized.Name,
		Duration:  normalized.Duration,
		Notes:     normalized.Notes,
		CreatedAt: original.CreatedAt,
		UpdatedAt: now,
	}
	if err := s.workouts.Update(ctx, w, plan); err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	s.changed(userID)

	return s.Get(ctx, userID, id)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.workouts.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

func (s *service) changed(userID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.UserDataChanged(userID, "workout")
	}
}

// normalizeInput обрезает пробелы и проверяет поля до любых обращений к хранилищу.
func normalizeInput(in Input) (Input, error) {
	if in.Date.IsZero() {
		return in, fmt.Errorf("%w: date is required", ErrValidation)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Notes = strings.TrimSpace(in.Notes)
	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: name is required", ErrValidation)
	case utf8.RuneCountInString(in.Name) > maxNameLength:
		return in, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	case utf8.RuneCountInString(in.Duration) > maxDurationLength:
		return in, fmt.Errorf("%w: duration must be at most %d characters", ErrValidation, maxDurationLength)
	case utf8.RuneCountInString(in.Notes) > maxNotesLength:
		return in, fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, maxNotesLength)
	case len(in.Exercises) > maxExercises:
		return in, fmt.Errorf("%w: at most %d exercises allowed", ErrValidation, maxExercises)
	}

	exercises := make([]aggregation.ExerciseEdit, len(in.Exercises))
	for i, e := range in.Exercises {
		e.Name = strings.TrimSpace(e.Name)
		e.Notes = strings.TrimSpace(e.Notes)
		if e.Name == "" {
			return in, fmt.Errorf("%w: exercise %d: name is required", ErrValidation, i+1)
		}
		if utf8.RuneCountInString(e.Name) > maxNameLength {
			return in, fmt.Errorf("%w: exercise %d: name must be at most %d characters", ErrValidation, i+1, maxNameLength)
		}
		if utf8.RuneCountInString(e.Notes) > maxNotesLength {
			return in, fmt.Errorf("%w: exercise %d: notes must be at most %d characters", ErrValidation, i+1, maxNotesLength)
		}
		if len(e.Sets) > maxSetsPerExercise {
			return in, fmt.Errorf("%w: exercise %d: at most %d sets allowed", ErrValidation, i+1, maxSetsPerExercise)
		}
		for j, set := range e.Sets {
			if aggregation.ParseReps(set.Reps) > maxSetReps {
				return in, fmt.Errorf("%w: exercise %d set %d: reps must be at most %d", ErrValidation, i+1, j+1, maxSetReps)
			}
			if aggregation.ParseWeight(set.Weight) > maxSetWeight {
				return in, fmt.Errorf("%w: exercise %d set %d: weight must be at most %.2f", ErrValidation, i+1, j+1, maxSetWeight)
			}
		}
		exercises[i] = e
	}
	in.Exercises = exercises
	return in, nil
}

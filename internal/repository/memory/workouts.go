package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/workout"
	repo "fittrack/internal/repository/interfaces"
)

// ErrInjected возвращается хуками FailStep в тестах.
var ErrInjected = errors.New("injected failure")

type workoutState struct {
	workouts  map[uuid.UUID]domain.Workout
	exercises map[uuid.UUID]domain.Exercise
	sets      map[uuid.UUID]domain.ExerciseSet
}

func (s workoutState) clone() workoutState {
	return workoutState{
		workouts:  maps.Clone(s.workouts),
		exercises: maps.Clone(s.exercises),
		sets:      maps.Clone(s.sets),
	}
}

// WorkoutRepository хранит тренировки, упражнения и подходы в памяти.
// Изменения применяются к копии состояния и фиксируются целиком,
// как транзакция в PostgreSQL.
type WorkoutRepository struct {
	mu    sync.Mutex
	state workoutState
	// FailStep, если задан, вызывается перед каждым шагом записи;
	// ошибка прерывает операцию без фиксации изменений.
	FailStep func(step string) error
	Err      error
}

var _ repo.WorkoutRepository = (*WorkoutRepository)(nil)

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{state: workoutState{
		workouts:  make(map[uuid.UUID]domain.Workout),
		exercises: make(map[uuid.UUID]domain.Exercise),
		sets:      make(map[uuid.UUID]domain.ExerciseSet),
	}}
}

func (r *WorkoutRepository) step(name string) error {
	if r.FailStep == nil {
		return nil
	}
	return r.FailStep(name)
}

func (r *WorkoutRepository) Create(_ context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	st := r.state.clone()
	if _, ok := st.workouts[w.ID]; ok {
		return repo.ErrConflict
	}
	if err := r.step("insert_workout"); err != nil {
		return err
	}
	head := *w
	head.Exercises = nil
	st.workouts[w.ID] = head

	for i := range w.Exercises {
		if err := r.insertExercise(st, &w.Exercises[i]); err != nil {
			return err
		}
	}
	r.state = st
	return nil
}

func (r *WorkoutRepository) insertExercise(st workoutState, ex *domain.Exercise) error {
	if _, ok := st.exercises[ex.ID]; ok {
		return repo.ErrConflict
	}
	if err := r.step("insert_exercise"); err != nil {
		return err
	}
	head := *ex
	head.SetList = nil
	st.exercises[ex.ID] = head
	return r.insertSets(st, ex)
}

func (r *WorkoutRepository) insertSets(st workoutState, ex *domain.Exercise) error {
	if err := r.step("insert_sets"); err != nil {
		return err
	}
	numbers := make(map[int]struct{}, len(ex.SetList))
	for _, s := range st.sets {
		if s.ExerciseID == ex.ID {
			numbers[s.SetNumber] = struct{}{}
		}
	}
	for i := range ex.SetList {
		s := ex.SetList[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.ExerciseID = ex.ID
		// уникальность (exercise_id, set_number)
		if _, dup := numbers[s.SetNumber]; dup {
			return repo.ErrConflict
		}
		numbers[s.SetNumber] = struct{}{}
		st.sets[s.ID] = s
	}
	return nil
}

func (r *WorkoutRepository) deleteSetsOf(st workoutState, exerciseID uuid.UUID) {
	for id, s := range st.sets {
		if s.ExerciseID == exerciseID {
			delete(st.sets, id)
		}
	}
}

func (r *WorkoutRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	w, ok := r.state.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repo.ErrNotFound
	}

	var exercises []domain.Exercise
	for _, ex := range r.state.exercises {
		if ex.WorkoutID != id {
			continue
		}
		for _, s := range r.state.sets {
			if s.ExerciseID == ex.ID {
				ex.SetList = append(ex.SetList, s)
			}
		}
		slices.SortFunc(ex.SetList, func(a, b domain.ExerciseSet) int { return a.SetNumber - b.SetNumber })
		exercises = append(exercises, ex)
	}
	slices.SortFunc(exercises, func(a, b domain.Exercise) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	w.Exercises = exercises
	return &w, nil
}

func (r *WorkoutRepository) userWorkouts(userID uuid.UUID) []domain.Workout {
	var out []domain.Workout
	for _, w := range r.state.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b domain.Workout) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (r *WorkoutRepository) List(_ context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var out []domain.Workout
	for _, w := range r.userWorkouts(userID) {
		d := aggregation.TruncateDay(w.Date)
		if params.From != nil && d.Before(aggregation.TruncateDay(*params.From)) {
			continue
		}
		if params.To != nil && d.After(aggregation.TruncateDay(*params.To)) {
			continue
		}
		out = append(out, w)
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *WorkoutRepository) ListDates(_ context.Context, userID uuid.UUID) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	workouts := r.userWorkouts(userID)
	dates := make([]time.Time, 0, len(workouts))
	for i := len(workouts) - 1; i >= 0; i-- {
		dates = append(dates, aggregation.TruncateDay(workouts[i].Date))
	}
	return dates, nil
}

func (r *WorkoutRepository) ListExerciseNames(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	workouts := r.userWorkouts(userID)
	var names []string
	for i := len(workouts) - 1; i >= 0; i-- {
		var exercises []domain.Exercise
		for _, ex := range r.state.exercises {
			if ex.WorkoutID == workouts[i].ID {
				exercises = append(exercises, ex)
			}
		}
		slices.SortFunc(exercises, func(a, b domain.Exercise) int { return a.Position - b.Position })
		for _, ex := range exercises {
			names = append(names, ex.Name)
		}
	}
	return names, nil
}

func (r *WorkoutRepository) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.userWorkouts(userID))), nil
}

func (r *WorkoutRepository) Update(_ context.Context, w *domain.Workout, plan aggregation.EditPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	st := r.state.clone()
	current, ok := st.workouts[w.ID]
	if !ok || current.UserID != w.UserID {
		return repo.ErrNotFound
	}
	if err := r.step("update_workout"); err != nil {
		return err
	}
	current.Date = w.Date
	current.Name = w.Name
	current.Duration = w.Duration
	current.Notes = w.Notes
	current.UpdatedAt = time.Now().UTC()
	st.workouts[w.ID] = current

	for _, id := range plan.DeleteExerciseIDs {
		if err := r.step("delete_exercise"); err != nil {
			return err
		}
		if ex, ok := st.exercises[id]; ok && ex.WorkoutID == w.ID {
			r.deleteSetsOf(st, id)
			delete(st.exercises, id)
		}
	}

	for i := range plan.UpdateExercises {
		ex := plan.UpdateExercises[i]
		existing, ok := st.exercises[ex.ID]
		if !ok || existing.WorkoutID != w.ID {
			return repo.ErrNotFound
		}
		if err := r.step("update_exercise"); err != nil {
			return err
		}
		head := ex
		head.WorkoutID = w.ID
		head.SetList = nil
		head.CreatedAt = existing.CreatedAt
		st.exercises[ex.ID] = head

		if err := r.step("delete_sets"); err != nil {
			return err
		}
		r.deleteSetsOf(st, ex.ID)
		if err := r.insertSets(st, &ex); err != nil {
			return err
		}
	}

	for i := range plan.InsertExercises {
		ex := plan.InsertExercises[i]
		ex.WorkoutID = w.ID
		if err := r.insertExercise(st, &ex); err != nil {
			return err
		}
	}

	r.state = st
	return nil
}

func (r *WorkoutRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	st := r.state.clone()
	w, ok := st.workouts[id]
	if !ok || w.UserID != userID {
		return repo.ErrNotFound
	}
	if err := r.step("delete_workout"); err != nil {
		return err
	}
	for exID, ex := range st.exercises {
		if ex.WorkoutID == id {
			r.deleteSetsOf(st, exID)
			delete(st.exercises, exID)
		}
	}
	delete(st.workouts, id)
	r.state = st
	return nil
}

// Counts возвращает общее число тренировок, упражнений и подходов.
func (r *WorkoutRepository) Counts() (workouts, exercises, sets int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.workouts), len(r.state.exercises), len(r.state.sets)
}

// OrphanCount возвращает число упражнений без тренировки и подходов без упражнения.
func (r *WorkoutRepository) OrphanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ex := range r.state.exercises {
		if _, ok := r.state.workouts[ex.WorkoutID]; !ok {
			n++
		}
	}
	for _, s := range r.state.sets {
		if _, ok := r.state.exercises[s.ExerciseID]; !ok {
			n++
		}
	}
	return n
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/workout"
	repo "fittrack/internal/repository/interfaces"
)

// pgWorkout: ORM-модель таблицы workouts.
type pgWorkout struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null"`
	Date      time.Time `gorm:"column:date;type:date;not null"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Duration  string    `gorm:"column:duration;type:varchar(64);not null"`
	Notes     string    `gorm:"column:notes;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (pgWorkout) TableName() string {
	return "workouts"
}

// pgExercise: ORM-модель таблицы exercises.
type pgExercise struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	WorkoutID string    `gorm:"column:workout_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Sets      int       `gorm:"column:sets;not null"`
	Reps      int       `gorm:"column:reps;not null"`
	Weight    float64   `gorm:"column:weight;type:numeric(6,1);not null"`
	Notes     string    `gorm:"column:notes;type:text;not null"`
	Position  int       `gorm:"column:position;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (pgExercise) TableName() string {
	return "exercises"
}

// pgExerciseSet: ORM-модель таблицы exercise_sets.
type pgExerciseSet struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	ExerciseID string    `gorm:"column:exercise_id;type:uuid;not null"`
	SetNumber  int       `gorm:"column:set_number;not null"`
	Reps       int       `gorm:"column:reps;not null"`
	Weight     float64   `gorm:"column:weight;type:numeric(6,2);not null"`
	RPE        *int      `gorm:"column:rpe;type:smallint"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (pgExerciseSet) TableName() string {
	return "exercise_sets"
}

func fromDomainWorkout(w *domain.Workout) *pgWorkout {
	return &pgWorkout{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Date:      toDate(w.Date),
		Name:      w.Name,
		Duration:  w.Duration,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (m *pgWorkout) toDomain() (domain.Workout, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Workout{}, err
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return domain.Workout{}, err
	}
	return domain.Workout{
		ID:        id,
		UserID:    userID,
		Date:      toDate(m.Date),
		Name:      m.Name,
		Duration:  m.Duration,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func fromDomainExercise(e *domain.Exercise, now time.Time) *pgExercise {
	return &pgExercise{
		ID:        e.ID.String(),
		WorkoutID: e.WorkoutID.String(),
		Name:      e.Name,
		Sets:      e.Sets,
		Reps:      e.Reps,
		Weight:    e.Weight,
		Notes:     e.Notes,
		Position:  e.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *pgExercise) toDomain() (domain.Exercise, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Exercise{}, err
	}
	workoutID, err := uuid.Parse(m.WorkoutID)
	if err != nil {
		return domain.Exercise{}, err
	}
	return domain.Exercise{
		ID:        id,
		WorkoutID: workoutID,
		Name:      m.Name,
		Sets:      m.Sets,
		Reps:      m.Reps,
		Weight:    m.Weight,
		Notes:     m.Notes,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (m *pgExerciseSet) toDomain() (domain.ExerciseSet, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.ExerciseSet{}, err
	}
	exerciseID, err := uuid.Parse(m.ExerciseID)
	if err != nil {
		return domain.ExerciseSet{}, err
	}
	return domain.ExerciseSet{
		ID:         id,
		ExerciseID: exerciseID,
		SetNumber:  m.SetNumber,
		Reps:       m.Reps,
		Weight:     m.Weight,
		RPE:        m.RPE,
	}, nil
}

// WorkoutRepository реализует repo.WorkoutRepository на GORM/Postgres.
type WorkoutRepository struct {
	db *gorm.DB
}

var _ repo.WorkoutRepository = (*WorkoutRepository)(nil)

// NewWorkoutRepository создает репозиторий тренировок.
func NewWorkoutRepository(db *gorm.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// Create сохраняет тренировку, её упражнения и подходы в одной транзакции.
func (r *WorkoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fromDomainWorkout(w)).Error; err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}
		for i := range w.Exercises {
			if err := insertExercise(tx, &w.Exercises[i], w.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID возвращает тренировку пользователя с упражнениями и подходами.
func (r *WorkoutRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Workout, error) {
	db := r.db.WithContext(ctx)

	var model pgWorkout
	err := db.Where("id = ? AND user_id = ?", id.String(), userID.String()).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	w, err := model.toDomain()
	if err != nil {
		return nil, err
	}

	var exModels []pgExercise
	if err := db.Where("workout_id = ?", model.ID).
		Order("position ASC").Order("created_at ASC").
		Find(&exModels).Error; err != nil {
		return nil, err
	}
	if len(exModels) == 0 {
		return &w, nil
	}

	exIDs := make([]string, len(exModels))
	for i := range exModels {
		exIDs[i] = exModels[i].ID
	}
	var setModels []pgExerciseSet
	if err := db.Where("exercise_id IN ?", exIDs).
		Order("set_number ASC").
		Find(&setModels).Error; err != nil {
		return nil, err
	}

	setsByExercise := make(map[uuid.UUID][]domain.ExerciseSet, len(exModels))
	for i := range setModels {
		s, err := setModels[i].toDomain()
		if err != nil {
			return nil, err
		}
		setsByExercise[s.ExerciseID] = append(setsByExercise[s.ExerciseID], s)
	}

	w.Exercises = make([]domain.Exercise, 0, len(exModels))
	for i := range exModels {
		ex, err := exModels[i].toDomain()
		if err != nil {
			return nil, err
		}
		ex.SetList = setsByExercise[ex.ID]
		w.Exercises = append(w.Exercises, ex)
	}
	return &w, nil
}

// List возвращает тренировки пользователя, новые первыми.
func (r *WorkoutRepository) List(ctx context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Workout, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID.String())
	if params.From != nil {
		q = q.Where("date >= ?", toDate(*params.From))
	}
	if params.To != nil {
		q = q.Where("date <= ?", toDate(*params.To))
	}
	q = q.Order("date DESC").Order("created_at DESC")
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}
	if params.Offset > 0 {
		q = q.Offset(params.Offset)
	}

	var models []pgWorkout
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, len(models))
	for i := range models {
		w, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

// ListDates возвращает даты тренировок пользователя по возрастанию.
func (r *WorkoutRepository) ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&pgWorkout{}).
		Where("user_id = ?", userID.String()).
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	for i := range dates {
		dates[i] = toDate(dates[i])
	}
	return dates, nil
}

// ListExerciseNames возвращает названия упражнений пользователя.
func (r *WorkoutRepository) ListExerciseNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("exercises").
		Joins("JOIN workouts ON workouts.id = exercises.workout_id").
		Where("workouts.user_id = ?", userID.String()).
		Order("workouts.date ASC").
		Order("workouts.created_at ASC").
		Order("exercises.position ASC").
		Pluck("exercises.name", &names).Error
	return names, err
}

// Count возвращает количество тренировок пользователя.
func (r *WorkoutRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&pgWorkout{}).
		Where("user_id = ?", userID.String()).
		Count(&n).Error
	return n, err
}

// Update применяет правки тренировки в одной транзакции: поля тренировки,
// удаление упражнений, запись сводок, затем замена подходов.
func (r *WorkoutRepository) Update(ctx context.Context, w *domain.Workout, plan aggregation.EditPlan) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&pgWorkout{}).
			Where("id = ? AND user_id = ?", w.ID.String(), w.UserID.String()).
			Updates(map[string]interface{}{
				"date":       toDate(w.Date),
				"name":       w.Name,
				"duration":   w.Duration,
				"notes":      w.Notes,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("update workout: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if len(plan.DeleteExerciseIDs) > 0 {
			ids := uuidStrings(plan.DeleteExerciseIDs)
			if err := tx.Where("exercise_id IN ?", ids).Delete(&pgExerciseSet{}).Error; err != nil {
				return fmt.Errorf("delete sets of removed exercises: %w", err)
			}
			if err := tx.Where("id IN ? AND workout_id = ?", ids, w.ID.String()).Delete(&pgExercise{}).Error; err != nil {
				return fmt.Errorf("delete exercises: %w", err)
			}
		}

		for i := range plan.UpdateExercises {
			ex := &plan.UpdateExercises[i]
			res := tx.Model(&pgExercise{}).
				Where("id = ? AND workout_id = ?", ex.ID.String(), w.ID.String()).
				Updates(map[string]interface{}{
					"name":       ex.Name,
					"notes":      ex.Notes,
					"sets":       ex.Sets,
					"reps":       ex.Reps,
					"weight":     ex.Weight,
					"position":   ex.Position,
					"updated_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("update exercise %s: %w", ex.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			if err := replaceSets(tx, ex, now); err != nil {
				return err
			}
		}

		for i := range plan.InsertExercises {
			ex := &plan.InsertExercises[i]
			ex.WorkoutID = w.ID
			if err := insertExercise(tx, ex, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete удаляет тренировку пользователя вместе с упражнениями и подходами.
func (r *WorkoutRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model pgWorkout
		err := tx.Select("id").
			Where("id = ? AND user_id = ?", id.String(), userID.String()).
			Take(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		exercises := tx.Model(&pgExercise{}).Select("id").Where("workout_id = ?", model.ID)
		if err := tx.Where("exercise_id IN (?)", exercises).Delete(&pgExerciseSet{}).Error; err != nil {
			return fmt.Errorf("delete sets: %w", err)
		}
		if err := tx.Where("workout_id = ?", model.ID).Delete(&pgExercise{}).Error; err != nil {
			return fmt.Errorf("delete exercises: %w", err)
		}
		if err := tx.Where("id = ?", model.ID).Delete(&pgWorkout{}).Error; err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
		return nil
	})
}

func insertExercise(tx *gorm.DB, ex *domain.Exercise, now time.Time) error {
	if err := tx.Create(fromDomainExercise(ex, now)).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return fmt.Errorf("insert exercise: %w", err)
	}
	return insertSets(tx, ex, now)
}

// replaceSets удаляет подходы упражнения и вставляет ex.SetList заново.
func replaceSets(tx *gorm.DB, ex *domain.Exercise, now time.Time) error {
	if err := tx.Where("exercise_id = ?", ex.ID.String()).Delete(&pgExerciseSet{}).Error; err != nil {
		return fmt.Errorf("delete sets of exercise %s: %w", ex.ID, err)
	}
	return insertSets(tx, ex, now)
}

func insertSets(tx *gorm.DB, ex *domain.Exercise, now time.Time) error {
	if len(ex.SetList) == 0 {
		return nil
	}
	models := make([]pgExerciseSet, len(ex.SetList))
	for i := range ex.SetList {
		s := &ex.SetList[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.ExerciseID = ex.ID
		models[i] = pgExerciseSet{
			ID:         s.ID.String(),
			ExerciseID: ex.ID.String(),
			SetNumber:  s.SetNumber,
			Reps:       s.Reps,
			Weight:     s.Weight,
			RPE:        s.RPE,
			CreatedAt:  now,
		}
	}
	if err := tx.Create(&models).Error; err != nil {
		return fmt.Errorf("insert sets of exercise %s: %w", ex.ID, err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/workout"
)

// WorkoutRepository определяет контракт хранения тренировок, упражнений и подходов.
//
// Владение проверяется по цепочке workout.user_id: упражнения и подходы
// чужих тренировок недоступны.
type WorkoutRepository interface {
	// Create сохраняет тренировку вместе с упражнениями и подходами в одной транзакции.
	Create(ctx context.Context, w *domain.Workout) error

	// GetByID возвращает тренировку с упражнениями (по Position) и подходами (по SetNumber).
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Workout, error)

	// List возвращает тренировки без упражнений, новые первыми.
	List(ctx context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Workout, error)

	// ListDates возвращает даты всех тренировок пользователя.
	ListDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)

	// ListExerciseNames возвращает названия всех упражнений пользователя
	// в порядке даты тренировки и позиции упражнения.
	ListExerciseNames(ctx context.Context, userID uuid.UUID) ([]string, error)

	Count(ctx context.Context, userID uuid.UUID) (int64, error)

	// Update обновляет поля тренировки и применяет план правок упражнений
	// в одной транзакции. Ошибка на любом шаге откатывает всё.
	Update(ctx context.Context, w *domain.Workout, plan aggregation.EditPlan) error

	// Delete удаляет тренировку вместе с упражнениями и подходами.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

package interfaces

import (
	"context"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/weight"
)

// WeightRepository определяет контракт хранения записей веса.
// Все методы фильтруют по владельцу userID.
type WeightRepository interface {
	Create(ctx context.Context, r *domain.Record) error

	// GetByID возвращает ErrNotFound и для чужой записи.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Record, error)

	List(ctx context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Record, error)

	// Delete возвращает ErrNotFound, если у пользователя нет такой записи.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

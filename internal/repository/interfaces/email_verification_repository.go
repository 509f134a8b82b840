package interfaces

import (
	"context"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/user"
)

// EmailVerificationRepository определяет контракт для работы с одноразовыми кодами.
type EmailVerificationRepository interface {
	// Create создает новую запись с кодом.
	Create(ctx context.Context, v *domain.EmailVerification) error

	// GetActive возвращает последнюю не истекшую запись пользователя для указанного назначения.
	// Возвращает (nil, ErrNotFound), если активного кода нет.
	GetActive(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.EmailVerification, error)

	// IncrementAttempts увеличивает счетчик попыток для записи по её ID.
	IncrementAttempts(ctx context.Context, id int64) error

	// DeleteByUserID удаляет все коды пользователя с указанным назначением.
	DeleteByUserID(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) error
}

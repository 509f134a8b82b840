package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/user"
)

// ErrNotFound возвращается, когда сущность не найдена в хранилище
// или принадлежит другому пользователю.
var ErrNotFound = errors.New("entity not found")

// ErrEmailExists возвращается, когда пользователь с таким email уже существует.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict возвращается, когда запись с таким идентификатором уже существует.
var ErrConflict = errors.New("entity already exists")

// UserRepository определяет контракт для работы с учётными записями на уровне хранилища.
//
// Интерфейс оперирует доменной моделью User и не раскрывает деталей реализации (GORM, SQL и т.п.).
type UserRepository interface {
	// Create создает нового пользователя.
	// Возвращает ErrEmailExists, если email уже используется.
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по идентификатору.
	// Возвращает (nil, ErrNotFound), если пользователь не найден или мягко удалён.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail возвращает пользователя по email.
	// Возвращает (nil, ErrNotFound), если пользователь не найден или мягко удалён.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// MarkEmailVerified отмечает email пользователя как подтверждённый.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SoftDelete помечает пользователя как удалённого (soft delete).
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

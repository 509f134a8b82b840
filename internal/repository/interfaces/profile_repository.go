package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/profile"
)

// ErrProfileExists возвращается, когда профиль для учётной записи уже создан.
var ErrProfileExists = errors.New("profile already exists")

// ProfileRepository определяет контракт хранения профилей.
type ProfileRepository interface {
	// Create создает профиль. Возвращает ErrProfileExists, если он уже есть.
	Create(ctx context.Context, p *domain.Profile) error

	// GetByID возвращает профиль по ID учётной записи.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// Upsert создает профиль или обновляет name и bio существующего.
	Upsert(ctx context.Context, p *domain.Profile) error
}

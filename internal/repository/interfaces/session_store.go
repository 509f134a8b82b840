package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound возвращается, когда refresh-сессия отозвана или истекла.
var ErrSessionNotFound = errors.New("session not found")

// RefreshSession: выданный refresh-токен, идентифицируемый по jti.
type RefreshSession struct {
	ID        string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// SessionStore хранит активные refresh-сессии.
type SessionStore interface {
	Save(ctx context.Context, s RefreshSession) error

	// Get возвращает ErrSessionNotFound, если сессии нет.
	Get(ctx context.Context, id string) (*RefreshSession, error)

	// Delete отзывает одну сессию. Возвращает ErrSessionNotFound, если сессии
	// уже нет: из двух параллельных удалений успешно только одно.
	Delete(ctx context.Context, id string) error

	// DeleteAllForUser отзывает все сессии пользователя.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

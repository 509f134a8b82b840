package user

import (
	"time"

	"github.com/google/uuid"
)

// User представляет учётную запись (identity) фитнес‑приложения.
//
// Модель описывает только данные аутентификации. Отображаемое имя и био
// хранятся в профиле (см. пакет profile).
type User struct {
	ID              uuid.UUID // Уникальный идентификатор пользователя
	Email           string    // Email (уникальный логин)
	PasswordHash    string    // Хэш пароля
	IsEmailVerified bool      // Подтверждён ли email пользователя

	CreatedAt time.Time  // Время создания
	UpdatedAt time.Time  // Время последнего обновления
	DeletedAt *time.Time // Для мягкого удаления (nil, если активен)
}

// NewUser создаёт нового пользователя на доменном уровне.
// Валидация входных данных и хеширование пароля выполняются в usecase‑слое.
func NewUser(email string, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsDeleted возвращает true, если пользователь мягко удалён.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// MarkDeleted помечает пользователя как удалённого и обновляет время обновления.
func (u *User) MarkDeleted(at time.Time) {
	u.DeletedAt = &at
	u.UpdatedAt = at
}

// Touch обновляет время последнего изменения сущности.
func (u *User) Touch(at time.Time) {
	u.UpdatedAt = at
}

// VerificationPurpose определяет назначение одноразового кода.
type VerificationPurpose string

const (
	PurposeSignup        VerificationPurpose = "signup"         // подтверждение email после регистрации
	PurposePasswordReset VerificationPurpose = "password_reset" // сброс пароля
)

// EmailVerification представляет одноразовый код, отправленный на email.
type EmailVerification struct {
	ID          int64               // Идентификатор записи (соответствует BIGSERIAL в БД)
	UserID      uuid.UUID           // Пользователь, для которого создан код
	Purpose     VerificationPurpose // Назначение кода
	CodeHash    string              // Хэш одноразового кода
	ExpiresAt   time.Time           // Время истечения кода
	Attempts    int                 // Количество использованных попыток
	MaxAttempts int                 // Максимально допустимое количество попыток
	CreatedAt   time.Time           // Время создания записи
}

// IsExpired сообщает, истёк ли код к моменту now.
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// AttemptsExhausted сообщает, исчерпаны ли попытки ввода кода.
func (v *EmailVerification) AttemptsExhausted() bool {
	return v.MaxAttempts > 0 && v.Attempts >= v.MaxAttempts
}

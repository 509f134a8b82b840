package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
)

const usersEmailKey = "users_email_key"

// pgUser представляет собой ORM-модель для таблицы users.
type pgUser struct {
	ID              string     `gorm:"column:id;type:uuid;primaryKey"`
	Email           string     `gorm:"column:email;type:varchar(255);not null"`
	PasswordHash    string     `gorm:"column:password_hash;type:varchar(255);not null"`
	IsEmailVerified bool       `gorm:"column:is_email_verified;not null"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;type:timestamptz;not null"`
	DeletedAt       *time.Time `gorm:"column:deleted_at;type:timestamptz"`
}

func (pgUser) TableName() string {
	return "users"
}

// UserRepository реализует repo.UserRepository с использованием GORM и Postgres.
type UserRepository struct {
	db *gorm.DB
}

// Убедимся на этапе компиляции, что структура реализует интерфейс.
var _ repo.UserRepository = (*UserRepository)(nil)

// NewUserRepository создает новый репозиторий пользователей.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// toDomain маппит ORM-модель в доменную.
func (m *pgUser) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:              id,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		IsEmailVerified: m.IsEmailVerified,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		DeletedAt:       m.DeletedAt,
	}, nil
}

// fromDomain маппит доменную модель в ORM-модель.
func fromDomain(u *domain.User) *pgUser {
	return &pgUser{
		ID:              u.ID.String(),
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		DeletedAt:       u.DeletedAt,
	}
}

// Create создает нового пользователя в БД.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(fromDomain(user)).Error
	if err != nil {
		if isUniqueViolation(err, usersEmailKey) {
			return repo.ErrEmailExists
		}
		return err
	}
	return nil
}

// oneByCondition возвращает одну запись по условию с учётом soft delete.
func (r *UserRepository) oneByCondition(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var model pgUser
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where(query, args...).
		Take(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain()
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.oneByCondition(ctx, "id = ?", id.String())
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.oneByCondition(ctx, "email = ?", email)
}

// MarkEmailVerified отмечает email как подтверждённый.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.updateActive(ctx, id, map[string]interface{}{
		"is_email_verified": true,
	})
}

// UpdatePassword заменяет хэш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateActive(ctx, id, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

// SoftDelete помечает пользователя как удалённого.
// Синхронизировано с доменным методом MarkDeleted (также обновляет updated_at).
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.updateActive(ctx, id, map[string]interface{}{
		"deleted_at": time.Now().UTC(),
	})
}

// updateActive обновляет поля активного пользователя и проставляет updated_at.
func (r *UserRepository) updateActive(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&pgUser{}).
		Where("id = ? AND deleted_at IS NULL", id.String()).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	// Ни одна строка не обновлена: пользователя нет или он уже удалён
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

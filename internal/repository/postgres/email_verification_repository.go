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

// pgEmailVerification представляет ORM-модель для таблицы email_verifications.
type pgEmailVerification struct {
	ID          int64     `gorm:"column:id;type:bigserial;primaryKey"`
	UserID      string    `gorm:"column:user_id;type:uuid;not null"`
	Purpose     string    `gorm:"column:purpose;type:varchar(32);not null"`
	CodeHash    string    `gorm:"column:code_hash;type:varchar(255);not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;type:timestamptz;not null"`
	Attempts    int       `gorm:"column:attempts;type:int;not null"`
	MaxAttempts int       `gorm:"column:max_attempts;type:int;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (pgEmailVerification) TableName() string {
	return "email_verifications"
}

func (m *pgEmailVerification) toDomain() (*domain.EmailVerification, error) {
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, err
	}

	return &domain.EmailVerification{
		ID:          m.ID,
		UserID:      userID,
		Purpose:     domain.VerificationPurpose(m.Purpose),
		CodeHash:    m.CodeHash,
		ExpiresAt:   m.ExpiresAt,
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func fromDomainEmailVerification(v *domain.EmailVerification) *pgEmailVerification {
	return &pgEmailVerification{
		ID:          v.ID,
		UserID:      v.UserID.String(),
		Purpose:     string(v.Purpose),
		CodeHash:    v.CodeHash,
		ExpiresAt:   v.ExpiresAt,
		Attempts:    v.Attempts,
		MaxAttempts: v.MaxAttempts,
		CreatedAt:   v.CreatedAt,
	}
}

// EmailVerificationRepository реализует repo.EmailVerificationRepository на GORM/Postgres.
type EmailVerificationRepository struct {
	db *gorm.DB
}

// Убедимся на этапе компиляции, что структура реализует интерфейс.
var _ repo.EmailVerificationRepository = (*EmailVerificationRepository)(nil)

// NewEmailVerificationRepository создает новый репозиторий одноразовых кодов.
func NewEmailVerificationRepository(db *gorm.DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

// Create создает новую запись с кодом. ID заполняется базой.
func (r *EmailVerificationRepository) Create(ctx context.Context, v *domain.EmailVerification) error {
	model := fromDomainEmailVerification(v)
	if err := r.db.WithContext(ctx).Omit("id").Create(model).Error; err != nil {
		return err
	}
	v.ID = model.ID
	return nil
}

// GetActive возвращает последнюю не истекшую запись по user_id и назначению.
func (r *EmailVerificationRepository) GetActive(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.EmailVerification, error) {
	var model pgEmailVerification

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND expires_at > NOW()", userID.String(), string(purpose)).
		Order("created_at DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return model.toDomain()
}

// IncrementAttempts увеличивает счетчик попыток для записи по её ID.
func (r *EmailVerificationRepository) IncrementAttempts(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&pgEmailVerification{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteByUserID удаляет все коды пользователя с указанным назначением.
func (r *EmailVerificationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID.String(), string(purpose)).
		Delete(&pgEmailVerification{}).Error
}

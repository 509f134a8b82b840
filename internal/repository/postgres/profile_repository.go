package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "fittrack/internal/domain/profile"
	repo "fittrack/internal/repository/interfaces"
)

const profilesPkey = "profiles_pkey"

// pgProfile: ORM-модель таблицы profiles.
type pgProfile struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Bio       string    `gorm:"column:bio;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (pgProfile) TableName() string {
	return "profiles"
}

func (m *pgProfile) toDomain() (*domain.Profile, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		ID:        id,
		Name:      m.Name,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func fromDomainProfile(p *domain.Profile) *pgProfile {
	return &pgProfile{
		ID:        p.ID.String(),
		Name:      p.Name,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProfileRepository реализует repo.ProfileRepository на GORM/Postgres.
type ProfileRepository struct {
	db *gorm.DB
}

var _ repo.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository создает репозиторий профилей.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create создает профиль. Повторная вставка возвращает ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	err := r.db.WithContext(ctx).Create(fromDomainProfile(p)).Error
	if err != nil {
		if isUniqueViolation(err, profilesPkey) {
			return repo.ErrProfileExists
		}
		return err
	}
	return nil
}

// GetByID возвращает профиль по ID учётной записи.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var model pgProfile
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain()
}

// Upsert вставляет профиль или обновляет name, bio и updated_at.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "bio", "updated_at"}),
		}).
		Create(fromDomainProfile(p)).Error
}

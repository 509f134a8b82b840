package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "fittrack/internal/domain/weight"
	repo "fittrack/internal/repository/interfaces"
)

// pgWeightRecord: ORM-модель таблицы weight_records.
type pgWeightRecord struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null"`
	Date      time.Time `gorm:"column:date;type:date;not null"`
	Weight    float64   `gorm:"column:weight;type:numeric(5,2);not null"`
	Notes     string    `gorm:"column:notes;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (pgWeightRecord) TableName() string {
	return "weight_records"
}

func (m *pgWeightRecord) toDomain() (domain.Record, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Record{}, err
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		ID:        id,
		UserID:    userID,
		Date:      toDate(m.Date),
		Weight:    m.Weight,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}, nil
}

// WeightRepository реализует repo.WeightRepository на GORM/Postgres.
type WeightRepository struct {
	db *gorm.DB
}

var _ repo.WeightRepository = (*WeightRepository)(nil)

// NewWeightRepository создает репозиторий записей веса.
func NewWeightRepository(db *gorm.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Create сохраняет запись веса.
func (r *WeightRepository) Create(ctx context.Context, rec *domain.Record) error {
	return r.db.WithContext(ctx).Create(&pgWeightRecord{
		ID:        rec.ID.String(),
		UserID:    rec.UserID.String(),
		Date:      toDate(rec.Date),
		Weight:    rec.Weight,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}).Error
}

// GetByID возвращает запись пользователя по ID.
func (r *WeightRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Record, error) {
	var model pgWeightRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec, err := model.toDomain()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List возвращает записи пользователя с фильтром по датам.
func (r *WeightRepository) List(ctx context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Record, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID.String())
	if params.From != nil {
		q = q.Where("date >= ?", toDate(*params.From))
	}
	if params.To != nil {
		q = q.Where("date <= ?", toDate(*params.To))
	}
	if params.Ascending {
		q = q.Order("date ASC").Order("created_at ASC")
	} else {
		q = q.Order("date DESC").Order("created_at DESC")
	}
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	var models []pgWeightRecord
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(models))
	for i := range models {
		rec, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete удаляет запись пользователя.
func (r *WeightRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		Delete(&pgWeightRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Count возвращает количество записей пользователя.
func (r *WeightRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&pgWeightRecord{}).
		Where("user_id = ?", userID.String()).
		Count(&n).Error
	return n, err
}

// toDate отбрасывает время, оставляя календарную дату в UTC.
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

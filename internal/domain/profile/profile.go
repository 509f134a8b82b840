package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile хранит отображаемые данные пользователя. ID совпадает с ID учётной записи.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Bio       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New создаёт профиль для учётной записи id.
func New(id uuid.UUID, name string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Stats содержит счётчики, показываемые на странице профиля.
type Stats struct {
	Workouts      int64
	WeightRecords int64
}

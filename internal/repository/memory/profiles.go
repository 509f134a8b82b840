package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/profile"
	repo "fittrack/internal/repository/interfaces"
)

// ProfileRepository хранит профили в памяти.
type ProfileRepository struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.Profile
	// BeforeCreate вызывается перед вставкой, позволяет смоделировать гонку.
	BeforeCreate func(p *domain.Profile)
}

var _ repo.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[uuid.UUID]domain.Profile)}
}

func (r *ProfileRepository) Create(_ context.Context, p *domain.Profile) error {
	if r.BeforeCreate != nil {
		r.BeforeCreate(p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; ok {
		return repo.ErrProfileExists
	}
	r.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[p.ID]; ok {
		existing.Name = p.Name
		existing.Bio = p.Bio
		existing.UpdatedAt = p.UpdatedAt
		r.profiles[p.ID] = existing
		return nil
	}
	r.profiles[p.ID] = *p
	return nil
}

// Len возвращает количество профилей.
func (r *ProfileRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

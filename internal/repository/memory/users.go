package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
)

// UserRepository хранит учётные записи в памяти.
type UserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	// Err, если задан, возвращается всеми методами.
	Err error
}

var _ repo.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.users {
		if existing.DeletedAt == nil && strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrEmailExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.DeletedAt == nil && u.Email == email {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *domain.User) { u.IsEmailVerified = true })
}

func (r *UserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) SoftDelete(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *domain.User) { u.MarkDeleted(time.Now().UTC()) })
}

func (r *UserRepository) update(id uuid.UUID, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return repo.ErrNotFound
	}
	fn(&u)
	u.Touch(time.Now().UTC())
	r.users[id] = u
	return nil
}

// EmailVerificationRepository хранит одноразовые коды в памяти.
type EmailVerificationRepository struct {
	mu     sync.Mutex
	nextID int64
	codes  map[int64]domain.EmailVerification
	Now    func() time.Time
}

var _ repo.EmailVerificationRepository = (*EmailVerificationRepository)(nil)

func NewEmailVerificationRepository() *EmailVerificationRepository {
	return &EmailVerificationRepository{
		codes: make(map[int64]domain.EmailVerification),
		Now:   time.Now,
	}
}

func (r *EmailVerificationRepository) Create(_ context.Context, v *domain.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	r.codes[v.ID] = *v
	return nil
}

func (r *EmailVerificationRepository) GetActive(_ context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.Now()
	var best *domain.EmailVerification
	for _, v := range r.codes {
		if v.UserID != userID || v.Purpose != purpose || !v.ExpiresAt.After(now) {
			continue
		}
		if best == nil || v.ID > best.ID {
			v := v
			best = &v
		}
	}
	if best == nil {
		return nil, repo.ErrNotFound
	}
	return best, nil
}

func (r *EmailVerificationRepository) IncrementAttempts(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.codes[id]
	if !ok {
		return repo.ErrNotFound
	}
	v.Attempts++
	r.codes[id] = v
	return nil
}

func (r *EmailVerificationRepository) DeleteByUserID(_ context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.codes {
		if v.UserID == userID && v.Purpose == purpose {
			delete(r.codes, id)
		}
	}
	return nil
}

// Len возвращает количество сохранённых кодов.
func (r *EmailVerificationRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

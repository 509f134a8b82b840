package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	domain "fittrack/internal/domain/profile"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
)

// Service описывает usecase-слой профиля пользователя.
type Service interface {
	// EnsureProfile возвращает профиль пользователя, создавая его при первом входе.
	// Повторные и конкурентные вызовы безопасны.
	EnsureProfile(ctx context.Context, userID uuid.UUID, name string) (*domain.Profile, error)

	// GetProfile возвращает профиль вместе с email и счётчиками записей.
	GetProfile(ctx context.Context, userID uuid.UUID) (*View, error)

	// UpdateProfile обновляет имя и био (upsert). Nil-поля не меняются.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.Profile, error)

	// DeleteAccount мягко удаляет учётную запись и отзывает все её сессии.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// View: профиль для страницы профиля.
type View struct {
	Profile domain.Profile
	Email   string
	Stats   domain.Stats
}

// UpdateInput описывает изменения профиля. Все поля опциональны.
type UpdateInput struct {
	Name *string
	Bio  *string
}

// ErrValidation оборачивает ошибки проверки входных данных.
var ErrValidation = errors.New("validation failed")

const (
	maxNameLength = 255
	maxBioLength  = 2000
)

type service struct {
	profiles repo.ProfileRepository
	users    repo.UserRepository
	workouts repo.WorkoutRepository
	weights  repo.WeightRepository
	sessions repo.SessionStore
	hub      *session.Hub
}

// NewService создаёт сервис профилей.
func NewService(
	profiles repo.ProfileRepository,
	users repo.UserRepository,
	workouts repo.WorkoutRepository,
	weights repo.WeightRepository,
	sessions repo.SessionStore,
	hub *session.Hub,
) Service {
	return &service{
		profiles: profiles,
		users:    users,
		workouts: workouts,
		weights:  weights,
		sessions: sessions,
		hub:      hub,
	}
}

// EnsureProfile реализует check-then-insert: вставка, проигравшая гонку, считается успехом.
func (s *service) EnsureProfile(ctx context.Context, userID uuid.UUID, name string) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p = domain.New(userID, strings.TrimSpace(name))
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrProfileExists) {
			return s.profiles.GetByID(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// GetProfile возвращает профиль с email и количеством тренировок и записей веса.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*View, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	workouts, err := s.workouts.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	weights, err := s.weights.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count weight records: %w", err)
	}

	return &View{
		Profile: *p,
		Email:   user.Email,
		Stats: domain.Stats{
			Workouts:      workouts,
			WeightRecords: weights,
		},
	}, nil
}

// UpdateProfile обновляет имя и био профиля.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.Profile, error) {
	p, err := s.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) > maxNameLength {
			return nil, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
		}
		p.Name = name
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			return nil, fmt.Errorf("%w: bio must be at most %d characters", ErrValidation, maxBioLength)
		}
		p.Bio = bio
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

// DeleteAccount мягко удаляет учётную запись и отзывает её сессии.
func (s *service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return err
	}

	// Учётная запись уже удалена: ошибка отзыва сессий не откатывает удаление,
	// refresh для удалённого пользователя всё равно отклоняется.
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to revoke sessions of deleted account")
	}

	s.hub.Publish(session.Event{Type: session.EventAccountDeleted, UserID: userID, At: time.Now().UTC()})
	return nil
}

package server

import (
	"github.com/go-redis/redis/v8"

	"fittrack/internal/database"
	repo "fittrack/internal/repository/interfaces"
	pgrepo "fittrack/internal/repository/postgres"
	redisrepo "fittrack/internal/repository/redis"
)

// Storage объединяет хранилища, с которыми работает сервер.
type Storage struct {
	Users              repo.UserRepository
	EmailVerifications repo.EmailVerificationRepository
	Profiles           repo.ProfileRepository
	Weights            repo.WeightRepository
	Workouts           repo.WorkoutRepository
	Sessions           repo.SessionStore
}

// NewPostgresStorage создаёт хранилища поверх PostgreSQL; сессии хранятся в redis.
func NewPostgresStorage(db *database.DB, redisClient *redis.Client) Storage {
	return Storage{
		Users:              pgrepo.NewUserRepository(db.DB),
		EmailVerifications: pgrepo.NewEmailVerificationRepository(db.DB),
		Profiles:           pgrepo.NewProfileRepository(db.DB),
		Weights:            pgrepo.NewWeightRepository(db.DB),
		Workouts:           pgrepo.NewWorkoutRepository(db.DB),
		Sessions:           redisrepo.NewSessionStore(redisClient),
	}
}

//go:build integration

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/config"
	"fittrack/internal/database"
)

// newIntegrationServer поднимает сервер поверх PostgreSQL и redis из окружения.
// Использует отдельную тестовую БД, если задана переменная окружения TEST_DB_NAME.
func newIntegrationServer(t *testing.T) (*Server, *captureSender, *database.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rootDir, err := findProjectRoot()
	require.NoError(t, err)
	// .env лежит в корне проекта
	t.Chdir(rootDir)

	cfg, err := config.Load()
	require.NoError(t, err)
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.Database.DBName = testDB
	}
	cfg.Auth.RateLimitPerMin = 0

	db, err := database.NewConnection(&cfg.Database, cfg.AppEnv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator, err := database.NewMigratorFromConfig(&cfg.Database)
	require.NoError(t, err)
	if err := migrator.Up(); err != nil && !errors.Is(err, database.ErrNoChange) {
		t.Fatalf("migrate: %v", err)
	}
	require.NoError(t, migrator.Close())
	require.NoError(t, db.Exec("TRUNCATE TABLE users, email_verifications, profiles, weight_records, workouts, exercises, exercise_sets RESTART IDENTITY CASCADE").Error)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	t.Cleanup(func() { _ = redisClient.Close() })
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis is not available: %v", err)
	}

	sender := &captureSender{codes: map[string]string{}}
	s := NewServer(cfg, Deps{
		Storage:     NewPostgresStorage(db, redisClient),
		EmailSender: sender,
		DB:          db,
		Redis:       redisClient,
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, sender, db
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func countRows(t *testing.T, db *database.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestIntegration_Health(t *testing.T) {
	s, _, _ := newIntegrationServer(t)

	w := call(t, s, http.MethodGet, "/health/db", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestIntegration_WorkoutLifecycle(t *testing.T) {
	s, sender, db := newIntegrationServer(t)
	token := signIn(t, s, sender, "itest@example.com")

	w := call(t, s, http.MethodPost, "/api/v1/workouts", token, gin.H{
		"date": "2024-03-11",
		"name": "Push",
		"exercises": []gin.H{
			{"name": "Bench", "sets": []gin.H{{"reps": 10, "weight": 60}, {"reps": 8, "weight": "62,5"}}},
			{"name": "Dips"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID        string `json:"id"`
		Exercises []struct {
			ID string `json:"id"`
		} `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Exercises, 2)
	assert.EqualValues(t, 3, countRows(t, db, "exercise_sets"))

	update := gin.H{
		"date": "2024-03-11",
		"name": "Push",
		"exercises": []gin.H{
			{"id": created.Exercises[0].ID, "name": "Bench", "sets": []gin.H{{"reps": 5, "weight": 80}}},
		},
		"deleted_exercise_ids": []string{created.Exercises[1].ID},
	}
	w = call(t, s, http.MethodPut, "/api/v1/workouts/"+created.ID, token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// повторное применение той же правки ничего не меняет
	w = call(t, s, http.MethodPut, "/api/v1/workouts/"+created.ID, token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, countRows(t, db, "exercises"))
	assert.EqualValues(t, 1, countRows(t, db, "exercise_sets"))

	w = call(t, s, http.MethodDelete, "/api/v1/workouts/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, countRows(t, db, "workouts"))
	assert.Zero(t, countRows(t, db, "exercises"))
	assert.Zero(t, countRows(t, db, "exercise_sets"))
}

func TestIntegration_DeleteAccountRevokesSessions(t *testing.T) {
	s, sender, _ := newIntegrationServer(t)
	token := signIn(t, s, sender, "leaver@example.com")

	w := call(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "leaver@example.com", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Tokens struct {
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = call(t, s, http.MethodDelete, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, s, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

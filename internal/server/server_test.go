package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fittrack/internal/config"
	"fittrack/internal/repository/memory"
	"fittrack/internal/session"
	"fittrack/pkg/mailer"
)

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *captureSender) SendEmailVerificationCode(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[msg.To] = msg.Code
	return nil
}

func (s *captureSender) SendPasswordResetCode(ctx context.Context, msg mailer.Message) error {
	return s.SendEmailVerificationCode(ctx, msg)
}

func (s *captureSender) code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		JWT: config.JWTConfig{
			AccessSecret:  "access",
			RefreshSecret: "refresh",
			Issuer:        "fittrack-test",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		Email:  config.EmailConfig{VerificationTTL: 15 * time.Minute, MaxAttempts: 5},
		Stats:  config.StatsConfig{WeeklyGoal: 3, MonthsBack: 5, CacheSizeMB: 4, CacheTTL: time.Minute},
		AppEnv: "test",
	}
}

func newTestServer(t *testing.T) (*Server, *captureSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sender := &captureSender{codes: map[string]string{}}
	s := NewServer(testConfig(), Deps{
		Storage: Storage{
			Users:              memory.NewUserRepository(),
			EmailVerifications: memory.NewEmailVerificationRepository(),
			Profiles:           memory.NewProfileRepository(),
			Weights:            memory.NewWeightRepository(),
			Workouts:           memory.NewWorkoutRepository(),
			Sessions:           memory.NewSessionStore(),
		},
		EmailSender: sender,
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, sender
}

func call(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, s *Server, sender *captureSender, email string) string {
	t.Helper()
	w := call(t, s, http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": email, "password": "secret-pass", "name": "Tester"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, s, http.MethodPost, "/api/v1/auth/verify-email", "", gin.H{"email": email, "code": sender.code(email)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tokens.AccessToken)
	return resp.Tokens.AccessToken
}

func TestServer_EndToEnd(t *testing.T) {
	s, sender := newTestServer(t)
	token := signIn(t, s, sender, "e2e@example.com")

	w := call(t, s, http.MethodGet, "/api/v1/stats/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		TotalWorkouts int64 `json:"total_workouts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Zero(t, dash.TotalWorkouts)

	today := time.Now().UTC().Format(time.DateOnly)
	w = call(t, s, http.MethodPost, "/api/v1/workouts", token, gin.H{
		"date":      today,
		"name":      "Full body",
		"exercises": []gin.H{{"name": "Squat", "sets": []gin.H{{"reps": 5, "weight": 100}}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, s, http.MethodPost, "/api/v1/weights", token, gin.H{"weight": 80})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// запись сбрасывает закэшированную сводку
	w = call(t, s, http.MethodGet, "/api/v1/stats/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.EqualValues(t, 1, dash.TotalWorkouts)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterWrites.WithLabelValues("workout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterWrites.WithLabelValues("weight")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.CounterStatsCache.WithLabelValues("dashboard", "miss")))

	w = call(t, s, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workouts":1`)
	assert.Contains(t, w.Body.String(), `"weight_records":1`)
}

func TestServer_Isolation(t *testing.T) {
	s, sender := newTestServer(t)
	alice := signIn(t, s, sender, "alice@example.com")
	bob := signIn(t, s, sender, "bob@example.com")

	w := call(t, s, http.MethodPost, "/api/v1/weights", alice, gin.H{"weight": 60})
	require.Equal(t, http.StatusCreated, w.Code)
	var rec struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	w = call(t, s, http.MethodGet, "/api/v1/weights/"+rec.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, s, http.MethodGet, "/api/v1/weights", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":[]}`, w.Body.String())
}

func TestServer_Routing(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK},
		{name: "health db without database", method: http.MethodGet, path: "/health/db", status: http.StatusServiceUnavailable},
		{name: "api root", method: http.MethodGet, path: "/api/v1/", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "swagger", method: http.MethodGet, path: "/swagger/doc.json", status: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nope", status: http.StatusNotFound},
		{name: "protected without token", method: http.MethodGet, path: "/api/v1/workouts", status: http.StatusUnauthorized},
		{name: "protected with garbage token", method: http.MethodGet, path: "/api/v1/stats/overview", token: "garbage", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, s, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestServer_InvalidID(t *testing.T) {
	s, sender := newTestServer(t)
	token := signIn(t, s, sender, "ids@example.com")

	for _, path := range []string{"/api/v1/workouts/42", "/api/v1/weights/not-a-uuid"} {
		w := call(t, s, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_id")
	}

	w := call(t, s, http.MethodGet, "/api/v1/workouts/"+uuid.NewString(), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "workout_not_found")
}

func TestServer_SessionEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, sender := newTestServer(t)
	done := make(chan struct{})
	go func() {
		s.consumeSessionEvents()
		close(done)
	}()

	signIn(t, s, sender, "events@example.com")
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.CounterSessionEvents.WithLabelValues(string(session.EventSignedIn))) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after shutdown")
	}
}

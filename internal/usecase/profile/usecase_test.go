package profile_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profiledomain "fittrack/internal/domain/profile"
	userdomain "fittrack/internal/domain/user"
	weightdomain "fittrack/internal/domain/weight"
	workoutdomain "fittrack/internal/domain/workout"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/repository/memory"
	"fittrack/internal/session"
	profileuc "fittrack/internal/usecase/profile"
)

type env struct {
	svc      profileuc.Service
	profiles *memory.ProfileRepository
	users    *memory.UserRepository
	workouts *memory.WorkoutRepository
	weights  *memory.WeightRepository
	sessions *memory.SessionStore
	events   <-chan session.Event
	user     *userdomain.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		profiles: memory.NewProfileRepository(),
		users:    memory.NewUserRepository(),
		workouts: memory.NewWorkoutRepository(),
		weights:  memory.NewWeightRepository(),
		sessions: memory.NewSessionStore(),
	}
	hub := session.NewHub(8)
	events, cancel := hub.Subscribe()
	t.Cleanup(cancel)
	e.events = events

	e.svc = profileuc.NewService(e.profiles, e.users, e.workouts, e.weights, e.sessions, hub)

	e.user = userdomain.NewUser("a@b.c", "hash")
	require.NoError(t, e.users.Create(context.Background(), e.user))
	return e
}

func TestEnsureProfile_CreatesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.svc.EnsureProfile(ctx, e.user.ID, " Alex ")
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.Name)

	again, err := e.svc.EnsureProfile(ctx, e.user.ID, "Other")
	require.NoError(t, err)
	assert.Equal(t, "Alex", again.Name)
	assert.Equal(t, 1, e.profiles.Len())
}

func TestEnsureProfile_LostRaceIsSuccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// конкурентный вход успевает вставить профиль между проверкой и вставкой
	e.profiles.BeforeCreate = func(p *profiledomain.Profile) {
		e.profiles.BeforeCreate = nil
		require.NoError(t, e.profiles.Create(ctx, profiledomain.New(p.ID, "Winner")))
	}

	p, err := e.svc.EnsureProfile(ctx, e.user.ID, "Loser")
	require.NoError(t, err)
	assert.Equal(t, "Winner", p.Name)
	assert.Equal(t, 1, e.profiles.Len())
}

func TestGetProfile_WithCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.workouts.Create(ctx, &workoutdomain.Workout{ID: uuid.New(), UserID: e.user.ID, Date: time.Now()}))
	for i := 0; i < 2; i++ {
		require.NoError(t, e.weights.Create(ctx, &weightdomain.Record{ID: uuid.New(), UserID: e.user.ID, Date: time.Now(), Weight: 80}))
	}

	v, err := e.svc.GetProfile(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", v.Email)
	assert.Equal(t, e.user.ID, v.Profile.ID)
	assert.EqualValues(t, 1, v.Stats.Workouts)
	assert.EqualValues(t, 2, v.Stats.WeightRecords)

	_, err = e.svc.GetProfile(ctx, uuid.New())
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	name, bio := "  Alex  ", "Lifter"
	p, err := e.svc.UpdateProfile(ctx, e.user.ID, profileuc.UpdateInput{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.Name)
	assert.Equal(t, "Lifter", p.Bio)

	// nil-поля не меняются
	newBio := ""
	p, err = e.svc.UpdateProfile(ctx, e.user.ID, profileuc.UpdateInput{Bio: &newBio})
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.Name)
	assert.Empty(t, p.Bio)

	stored, err := e.profiles.GetByID(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", stored.Name)
	assert.Empty(t, stored.Bio)

	long := strings.Repeat("я", 256)
	_, err = e.svc.UpdateProfile(ctx, e.user.ID, profileuc.UpdateInput{Name: &long})
	require.ErrorIs(t, err, profileuc.ErrValidation)
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.sessions.Save(ctx, repo.RefreshSession{ID: "jti-1", UserID: e.user.ID, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, e.sessions.Save(ctx, repo.RefreshSession{ID: "jti-2", UserID: e.user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, e.svc.DeleteAccount(ctx, e.user.ID))
	assert.Zero(t, e.sessions.CountForUser(e.user.ID))

	_, err := e.users.GetByID(ctx, e.user.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)

	select {
	case ev := <-e.events:
		assert.Equal(t, session.EventAccountDeleted, ev.Type)
		assert.Equal(t, e.user.ID, ev.UserID)
	default:
		t.Fatal("expected account_deleted event")
	}

	require.ErrorIs(t, e.svc.DeleteAccount(ctx, e.user.ID), repo.ErrNotFound)
}

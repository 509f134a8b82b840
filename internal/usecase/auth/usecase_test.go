package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/config"
	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/repository/memory"
	"fittrack/internal/session"
	authuc "fittrack/internal/usecase/auth"
	profileuc "fittrack/internal/usecase/profile"
	jwtsvc "fittrack/pkg/jwt"
	"fittrack/pkg/mailer"
	"fittrack/pkg/password"
)

type fakeEmailSender struct {
	verification []mailer.Message
	reset        []mailer.Message
	err          error
}

func (s *fakeEmailSender) SendEmailVerificationCode(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.verification = append(s.verification, msg)
	return nil
}

func (s *fakeEmailSender) SendPasswordResetCode(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.reset = append(s.reset, msg)
	return nil
}

func (s *fakeEmailSender) lastVerificationCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.verification)
	return s.verification[len(s.verification)-1].Code
}

type env struct {
	svc      authuc.Service
	users    *memory.UserRepository
	codes    *memory.EmailVerificationRepository
	profiles *memory.ProfileRepository
	sessions *memory.SessionStore
	sender   *fakeEmailSender
	events   <-chan session.Event
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		users:    memory.NewUserRepository(),
		codes:    memory.NewEmailVerificationRepository(),
		profiles: memory.NewProfileRepository(),
		sessions: memory.NewSessionStore(),
		sender:   &fakeEmailSender{},
	}

	hub := session.NewHub(32)
	events, cancel := hub.Subscribe()
	t.Cleanup(cancel)
	e.events = events

	profiles := profileuc.NewService(e.profiles, e.users, memory.NewWorkoutRepository(), memory.NewWeightRepository(), e.sessions, hub)
	jwt := jwtsvc.NewService(&config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		Issuer:        "fittrack-test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	e.svc = authuc.NewService(e.users, e.codes, profiles, e.sessions, jwt, e.sender, hub, authuc.Config{
		VerificationTTL:  15 * time.Minute,
		MaxAttempts:      3,
		CodeLength:       6,
		RedirectURL:      "http://app/callback",
		ResetRedirectURL: "http://app/reset",
	})
	return e
}

func (e *env) drainEvents() []session.EventType {
	var out []session.EventType
	for {
		select {
		case ev := <-e.events:
			out = append(out, ev.Type)
		default:
			return out
		}
	}
}

// registerVerified регистрирует пользователя и подтверждает email.
func (e *env) registerVerified(t *testing.T, email, pw string) *authuc.Result {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.Register(ctx, email, pw, "Alex")
	require.NoError(t, err)
	res, err := e.svc.VerifyEmail(ctx, email, e.sender.lastVerificationCode(t))
	require.NoError(t, err)
	return res
}

func TestRegister_CreatesUserProfileAndSendsCode(t *testing.T) {
	e := newEnv(t)

	u, err := e.svc.Register(context.Background(), "  Alex@Example.com ", "secret123", " Alex ")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", u.Email)
	assert.False(t, u.IsEmailVerified)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	p, err := e.profiles.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.Name)

	require.Len(t, e.sender.verification, 1)
	assert.Equal(t, "alex@example.com", e.sender.verification[0].To)
	assert.Equal(t, "http://app/callback", e.sender.verification[0].Link)
	assert.Len(t, e.sender.verification[0].Code, 6)
	assert.Equal(t, 1, e.codes.Len())
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "", "secret123", "")
	require.ErrorIs(t, err, authuc.ErrValidation)

	_, err = e.svc.Register(ctx, "not-an-email", "secret123", "")
	require.ErrorIs(t, err, authuc.ErrValidation)

	_, err = e.svc.Register(ctx, "a@b.c", "short", "")
	require.ErrorIs(t, err, authuc.ErrValidation)

	assert.Empty(t, e.sender.verification)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
	require.NoError(t, err)

	_, err = e.svc.Register(ctx, "A@B.C", "secret123", "")
	require.ErrorIs(t, err, repo.ErrEmailExists)
}

func TestVerifyEmail_OpensSession(t *testing.T) {
	e := newEnv(t)

	res := e.registerVerified(t, "a@b.c", "secret123")
	assert.True(t, res.User.IsEmailVerified)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Alex", res.Profile.Name)

	assert.Zero(t, e.codes.Len())
	assert.Equal(t, 1, e.sessions.CountForUser(res.User.ID))
	assert.Equal(t, []session.EventType{session.EventSignedIn}, e.drainEvents())

	_, err := e.svc.VerifyEmail(context.Background(), "a@b.c", "000000")
	require.ErrorIs(t, err, authuc.ErrEmailAlreadyVerified)
}

func TestVerifyEmail_WrongCodeExhaustsAttempts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
	require.NoError(t, err)
	code := e.sender.lastVerificationCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err = e.svc.VerifyEmail(ctx, "a@b.c", wrong)
	require.ErrorIs(t, err, authuc.ErrVerificationCodeInvalid)
	_, err = e.svc.VerifyEmail(ctx, "a@b.c", wrong)
	require.ErrorIs(t, err, authuc.ErrVerificationCodeInvalid)
	_, err = e.svc.VerifyEmail(ctx, "a@b.c", wrong)
	require.ErrorIs(t, err, authuc.ErrVerificationAttemptsExceeded)

	// код удалён, верный код больше не подходит
	_, err = e.svc.VerifyEmail(ctx, "a@b.c", code)
	require.ErrorIs(t, err, authuc.ErrVerificationCodeNotFound)
}

func TestVerifyEmail_ExpiredCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
	require.NoError(t, err)
	e.codes.Now = func() time.Time { return time.Now().Add(time.Hour) }

	_, err = e.svc.VerifyEmail(ctx, "a@b.c", e.sender.lastVerificationCode(t))
	require.ErrorIs(t, err, authuc.ErrVerificationCodeNotFound)
}

func TestVerifyEmail_UnknownEmail(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.VerifyEmail(context.Background(), "nobody@b.c", "123456")
	require.ErrorIs(t, err, authuc.ErrVerificationCodeNotFound)
}

func TestResendVerificationCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("unknown email is silent", func(t *testing.T) {
		require.NoError(t, e.svc.ResendVerificationCode(ctx, "nobody@b.c"))
		assert.Empty(t, e.sender.verification)
	})

	t.Run("replaces the previous code", func(t *testing.T) {
		_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
		require.NoError(t, err)
		first := e.sender.lastVerificationCode(t)

		require.NoError(t, e.svc.ResendVerificationCode(ctx, "a@b.c"))
		require.Len(t, e.sender.verification, 2)
		assert.Equal(t, 1, e.codes.Len())

		second := e.sender.lastVerificationCode(t)
		if first != second {
			_, err = e.svc.VerifyEmail(ctx, "a@b.c", first)
			require.ErrorIs(t, err, authuc.ErrVerificationCodeInvalid)
		}
		_, err = e.svc.VerifyEmail(ctx, "a@b.c", second)
		require.NoError(t, err)
	})

	t.Run("verified email", func(t *testing.T) {
		err := e.svc.ResendVerificationCode(ctx, "a@b.c")
		require.ErrorIs(t, err, authuc.ErrEmailAlreadyVerified)
	})
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
	require.NoError(t, err)

	_, err = e.svc.Login(ctx, "a@b.c", "secret123")
	require.ErrorIs(t, err, authuc.ErrEmailNotVerified)

	_, err = e.svc.VerifyEmail(ctx, "a@b.c", e.sender.lastVerificationCode(t))
	require.NoError(t, err)
	e.drainEvents()

	_, err = e.svc.Login(ctx, "a@b.c", "wrong-password")
	require.ErrorIs(t, err, authuc.ErrInvalidCredentials)

	_, err = e.svc.Login(ctx, "nobody@b.c", "secret123")
	require.ErrorIs(t, err, authuc.ErrInvalidCredentials)

	res, err := e.svc.Login(ctx, "A@B.C", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, 2, e.sessions.CountForUser(res.User.ID))
	assert.Equal(t, []session.EventType{session.EventSignedIn}, e.drainEvents())
}

func TestLogin_CreatesMissingProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := domain.NewUser("old@b.c", "")
	u.IsEmailVerified = true
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	u.PasswordHash = hash
	require.NoError(t, e.users.Create(ctx, u))
	require.Zero(t, e.profiles.Len())

	res, err := e.svc.Login(ctx, "old@b.c", "secret123")
	require.NoError(t, err)
	require.NotNil(t, res.Profile)
	assert.Equal(t, u.ID, res.Profile.ID)
	assert.Equal(t, 1, e.profiles.Len())
}

func TestRefresh_RotatesToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.registerVerified(t, "a@b.c", "secret123")
	e.drainEvents()

	second, err := e.svc.Refresh(ctx, first.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.Equal(t, 1, e.sessions.CountForUser(first.User.ID))
	assert.Equal(t, []session.EventType{session.EventRefreshed}, e.drainEvents())

	// повторное использование старого токена отклоняется
	_, err = e.svc.Refresh(ctx, first.Tokens.RefreshToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)

	_, err = e.svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)

	// access-токен не принимается как refresh
	_, err = e.svc.Refresh(ctx, second.Tokens.AccessToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)
}

// stolenSessions удаляет сессию сразу после чтения, как параллельный Refresh.
type stolenSessions struct {
	*memory.SessionStore
}

func (s stolenSessions) Get(ctx context.Context, id string) (*repo.RefreshSession, error) {
	sess, err := s.SessionStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SessionStore.Delete(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

func TestRefresh_ConcurrentRotationWinsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.registerVerified(t, "a@b.c", "secret123")
	e.drainEvents()

	jwt := jwtsvc.NewService(&config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		Issuer:        "fittrack-test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	hub := session.NewHub(4)
	profiles := profileuc.NewService(e.profiles, e.users, memory.NewWorkoutRepository(), memory.NewWeightRepository(), e.sessions, hub)
	svc := authuc.NewService(e.users, e.codes, profiles, stolenSessions{e.sessions}, jwt, e.sender, hub, authuc.Config{
		VerificationTTL: 15 * time.Minute,
		MaxAttempts:     3,
		CodeLength:      6,
	})

	_, err := svc.Refresh(ctx, first.Tokens.RefreshToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)
	assert.Zero(t, e.sessions.CountForUser(first.User.ID))
}

func TestRefresh_DeletedAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.registerVerified(t, "a@b.c", "secret123")
	require.NoError(t, e.users.SoftDelete(ctx, res.User.ID))

	_, err := e.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.registerVerified(t, "a@b.c", "secret123")
	e.drainEvents()

	require.NoError(t, e.svc.Logout(ctx, res.Tokens.RefreshToken))
	assert.Zero(t, e.sessions.CountForUser(res.User.ID))
	assert.Equal(t, []session.EventType{session.EventSignedOut}, e.drainEvents())

	// повторный выход не ошибка
	require.NoError(t, e.svc.Logout(ctx, res.Tokens.RefreshToken))

	_, err := e.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)

	require.ErrorIs(t, e.svc.Logout(ctx, "garbage"), authuc.ErrInvalidRefreshToken)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.registerVerified(t, "a@b.c", "secret123")
	_, err := e.svc.Login(ctx, "a@b.c", "secret123")
	require.NoError(t, err)
	require.Equal(t, 2, e.sessions.CountForUser(res.User.ID))
	e.drainEvents()

	require.NoError(t, e.svc.RequestPasswordReset(ctx, "nobody@b.c"))
	assert.Empty(t, e.sender.reset)

	require.NoError(t, e.svc.RequestPasswordReset(ctx, "a@b.c"))
	require.Len(t, e.sender.reset, 1)
	msg := e.sender.reset[0]
	assert.Equal(t, "http://app/reset", msg.Link)

	err = e.svc.ResetPassword(ctx, "a@b.c", msg.Code, "short")
	require.ErrorIs(t, err, authuc.ErrValidation)

	require.NoError(t, e.svc.ResetPassword(ctx, "a@b.c", msg.Code, "new-secret"))
	assert.Zero(t, e.sessions.CountForUser(res.User.ID))
	assert.Equal(t, []session.EventType{session.EventPasswordReset}, e.drainEvents())

	// код одноразовый
	err = e.svc.ResetPassword(ctx, "a@b.c", msg.Code, "another-secret")
	require.ErrorIs(t, err, authuc.ErrVerificationCodeNotFound)

	_, err = e.svc.Login(ctx, "a@b.c", "secret123")
	require.ErrorIs(t, err, authuc.ErrInvalidCredentials)
	_, err = e.svc.Login(ctx, "a@b.c", "new-secret")
	require.NoError(t, err)

	_, err = e.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, authuc.ErrInvalidRefreshToken)
}

func TestResetPassword_VerifiesEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "a@b.c", "secret123", "")
	require.NoError(t, err)
	require.NoError(t, e.svc.RequestPasswordReset(ctx, "a@b.c"))
	require.NoError(t, e.svc.ResetPassword(ctx, "a@b.c", e.sender.reset[0].Code, "new-secret"))

	res, err := e.svc.Login(ctx, "a@b.c", "new-secret")
	require.NoError(t, err)
	assert.True(t, res.User.IsEmailVerified)
	// код подтверждения регистрации тоже удалён
	assert.Zero(t, e.codes.Len())
}

func TestSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.registerVerified(t, "a@b.c", "secret123")

	id, err := e.svc.Session(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", id.User.Email)
	assert.Equal(t, "Alex", id.Profile.Name)

	_, err = e.svc.Session(ctx, uuid.New())
	require.Error(t, err)
}

func TestRegister_SenderFailure(t *testing.T) {
	e := newEnv(t)
	e.sender.err = errors.New("smtp down")

	_, err := e.svc.Register(context.Background(), "a@b.c", "secret123", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	profiledomain "fittrack/internal/domain/profile"
	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
	jwtsvc "fittrack/pkg/jwt"
	"fittrack/pkg/mailer"
	"fittrack/pkg/password"
	"fittrack/pkg/verification"
)

// ProfileEnsurer гарантирует наличие профиля у учётной записи.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, name string) (*profiledomain.Profile, error)
}

// Service описывает usecase-слой аутентификации: регистрацию, подтверждение email,
// вход, обновление и отзыв сессий, сброс пароля.
type Service interface {
	// Register регистрирует пользователя, создаёт профиль и отправляет код подтверждения email.
	Register(ctx context.Context, email, password, name string) (*domain.User, error)

	// VerifyEmail проверяет код подтверждения, активирует пользователя и открывает сессию.
	VerifyEmail(ctx context.Context, email, code string) (*Result, error)

	// ResendVerificationCode отправляет новый код подтверждения.
	// Для неизвестного email молча возвращает nil.
	ResendVerificationCode(ctx context.Context, email string) error

	// Login выполняет вход по email/паролю, проверяя, что email подтверждён.
	Login(ctx context.Context, email, password string) (*Result, error)

	// Refresh отзывает переданный refresh-токен и выдаёт новую пару.
	Refresh(ctx context.Context, refreshToken string) (*Result, error)

	// Logout отзывает refresh-сессию.
	Logout(ctx context.Context, refreshToken string) error

	// RequestPasswordReset отправляет код сброса пароля.
	// Для неизвестного email молча возвращает nil.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword меняет пароль по коду и отзывает все сессии пользователя.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// Session возвращает текущую учётную запись и её профиль.
	Session(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// Identity: учётная запись вместе с профилем.
type Identity struct {
	User    *domain.User
	Profile *profiledomain.Profile
}

// Tokens: пара токенов открытой сессии.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Result: результат успешного входа.
type Result struct {
	Identity
	Tokens Tokens
}

// Ошибки бизнес-логики usecase-слоя.
var (
	ErrValidation                   = errors.New("validation failed")
	ErrEmailAlreadyVerified         = errors.New("email already verified")
	ErrVerificationCodeNotFound     = errors.New("verification code not found")
	ErrVerificationCodeInvalid      = errors.New("verification code invalid")
	ErrVerificationAttemptsExceeded = errors.New("verification attempts exceeded")
	ErrEmailNotVerified             = errors.New("email not verified")
	ErrInvalidCredentials           = errors.New("invalid email or password")
	ErrInvalidRefreshToken          = errors.New("invalid refresh token")
)

const (
	minPasswordLength = 8
	maxNameLength     = 255
)

// Config задаёт параметры одноразовых кодов и адреса возврата из писем.
type Config struct {
	VerificationTTL  time.Duration
	MaxAttempts      int
	CodeLength       int
	RedirectURL      string
	ResetRedirectURL string
}

type service struct {
	users       repo.UserRepository
	emailVerifs repo.EmailVerificationRepository
	profiles    ProfileEnsurer
	sessions    repo.SessionStore
	jwt         jwtsvc.Service
	emailSender mailer.EmailSender
	hub         *session.Hub
	cfg         Config
	now         func() time.Time
}

// NewService создаёт новый auth usecase-сервис.
func NewService(
	users repo.UserRepository,
	emailVerifs repo.EmailVerificationRepository,
	profiles ProfileEnsurer,
	sessions repo.SessionStore,
	jwt jwtsvc.Service,
	emailSender mailer.EmailSender,
	hub *session.Hub,
	cfg Config,
) Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	return &service{
		users:       users,
		emailVerifs: emailVerifs,
		profiles:    profiles,
		sessions:    sessions,
		jwt:         jwt,
		emailSender: emailSender,
		hub:         hub,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	return nil
}

func validatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}

// Register регистрирует нового пользователя и отправляет код подтверждения email.
func (s *service) Register(ctx context.Context, email, rawPassword, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(rawPassword); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}

	// Хешируем пароль на уровне usecase.
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(email, hashed)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.profiles.EnsureProfile(ctx, user.ID, name); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	code, err := s.issueCode(ctx, user.ID, domain.PurposeSignup)
	if err != nil {
		return nil, err
	}

	if err := s.emailSender.SendEmailVerificationCode(ctx, mailer.Message{
		To:   user.Email,
		Code: code,
		Link: s.cfg.RedirectURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return user, nil
}

// VerifyEmail подтверждает email по коду и открывает сессию.
func (s *service) VerifyEmail(ctx context.Context, email, code string) (*Result, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVerificationCodeNotFound
		}
		return nil, err
	}
	if user.IsEmailVerified {
		return nil, ErrEmailAlreadyVerified
	}

	if err := s.checkCode(ctx, user.ID, domain.PurposeSignup, code); err != nil {
		return nil, err
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsEmailVerified = true
	s.dropCodes(ctx, user.ID, domain.PurposeSignup)

	return s.openSession(ctx, user, session.EventSignedIn)
}

// ResendVerificationCode отправляет новый код подтверждения email.
func (s *service) ResendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Не раскрываем, зарегистрирован ли email
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	code, err := s.issueCode(ctx, user.ID, domain.PurposeSignup)
	if err != nil {
		return err
	}

	if err := s.emailSender.SendEmailVerificationCode(ctx, mailer.Message{
		To:   user.Email,
		Code: code,
		Link: s.cfg.RedirectURL,
	}); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// Login выполняет вход по email/паролю.
func (s *service) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	email = normalizeEmail(email)
	if email == "" || rawPassword == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.openSession(ctx, user, session.EventSignedIn)
}

// Refresh выполняет ротацию refresh-токена.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}

	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if stored.UserID != userID {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	// Не выдаём новые токены, если email не подтверждён.
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	// Старый токен больше не действителен. Сессию уже удалил параллельный
	// Refresh или Logout: новую пару не выдаём.
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return s.openSession(ctx, user, session.EventRefreshed)
}

// Logout отзывает refresh-сессию. Уже отозванная сессия не считается ошибкой.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: refresh token is required", ErrValidation)
	}

	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		// повторный выход не ошибка
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	s.hub.Publish(session.Event{Type: session.EventSignedOut, UserID: userID, At: s.now()})
	return nil
}

// RequestPasswordReset отправляет код сброса пароля.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := s.issueCode(ctx, user.ID, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	if err := s.emailSender.SendPasswordResetCode(ctx, mailer.Message{
		To:   user.Email,
		Code: code,
		Link: s.cfg.ResetRedirectURL,
	}); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword меняет пароль по коду сброса.
func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code are required", ErrValidation)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVerificationCodeNotFound
		}
		return err
	}

	if err := s.checkCode(ctx, user.ID, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	// Код пришёл на этот email, значит адрес подтверждён
	if !user.IsEmailVerified {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return err
		}
		s.dropCodes(ctx, user.ID, domain.PurposeSignup)
	}
	s.dropCodes(ctx, user.ID, domain.PurposePasswordReset)

	if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.hub.Publish(session.Event{Type: session.EventPasswordReset, UserID: user.ID, At: s.now()})
	return nil
}

// Session возвращает учётную запись и профиль текущего пользователя.
func (s *service) Session(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return &Identity{User: user, Profile: p}, nil
}

// openSession гарантирует профиль, выдаёт токены и сохраняет refresh-сессию.
func (s *service) openSession(ctx context.Context, user *domain.User, event session.EventType) (*Result, error) {
	p, err := s.profiles.EnsureProfile(ctx, user.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, jti, expiresAt, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, repo.RefreshSession{
		ID:        jti,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.hub.Publish(session.Event{Type: event, UserID: user.ID, At: s.now()})

	return &Result{
		Identity: Identity{User: user, Profile: p},
		Tokens: Tokens{
			AccessToken:      access,
			RefreshToken:     refresh,
			RefreshExpiresAt: expiresAt,
		},
	}, nil
}

// issueCode заменяет активные коды пользователя новым и возвращает его в открытом виде.
func (s *service) issueCode(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (string, error) {
	if err := s.emailVerifs.DeleteByUserID(ctx, userID, purpose); err != nil {
		return "", fmt.Errorf("failed to delete old codes: %w", err)
	}

	code, err := verification.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	codeHash, err := password.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	now := s.now()
	if err := s.emailVerifs.Create(ctx, &domain.EmailVerification{
		UserID:      userID,
		Purpose:     purpose,
		CodeHash:    codeHash,
		ExpiresAt:   now.Add(s.cfg.VerificationTTL),
		MaxAttempts: s.cfg.MaxAttempts,
		CreatedAt:   now,
	}); err != nil {
		return "", err
	}
	return code, nil
}

// checkCode проверяет активный код. Исчерпанный код удаляется.
func (s *service) checkCode(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose, code string) error {
	v, err := s.emailVerifs.GetActive(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVerificationCodeNotFound
		}
		return err
	}

	res, err := verification.VerifyCode(ctx, v, code, s.emailVerifs, s.now())
	if err != nil {
		return err
	}

	switch res {
	case verification.VerificationSuccess:
		return nil
	case verification.VerificationExpired:
		s.dropCodes(ctx, userID, purpose)
		return ErrVerificationCodeNotFound
	case verification.VerificationAttemptsExceeded:
		s.dropCodes(ctx, userID, purpose)
		return ErrVerificationAttemptsExceeded
	default:
		return ErrVerificationCodeInvalid
	}
}

func (s *service) dropCodes(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) {
	if err := s.emailVerifs.DeleteByUserID(ctx, userID, purpose); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"purpose": purpose,
		}).Warn("failed to delete verification codes")
	}
}

package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/pkg/password"
)

// VerificationResult представляет результат проверки кода.
type VerificationResult int

const (
	VerificationSuccess VerificationResult = iota
	VerificationCodeInvalid
	VerificationAttemptsExceeded
	VerificationExpired
)

// VerifyCode проверяет одноразовый код и учитывает неудачные попытки.
// При неверном коде счётчик попыток увеличивается в хранилище и в переданной записи.
func VerifyCode(
	ctx context.Context,
	verification *domain.EmailVerification,
	code string,
	emailVerifs repo.EmailVerificationRepository,
	now time.Time,
) (VerificationResult, error) {
	if verification.IsExpired(now) {
		return VerificationExpired, nil
	}
	if verification.AttemptsExhausted() {
		return VerificationAttemptsExceeded, nil
	}

	err := password.Compare(verification.CodeHash, code)
	if err != nil && !errors.Is(err, password.ErrMismatch) {
		return 0, fmt.Errorf("compare verification code: %w", err)
	}
	if err != nil {
		if err := emailVerifs.IncrementAttempts(ctx, verification.ID); err != nil {
			return 0, fmt.Errorf("failed to increment attempts: %w", err)
		}
		verification.Attempts++

		if verification.AttemptsExhausted() {
			return VerificationAttemptsExceeded, nil
		}
		return VerificationCodeInvalid, nil
	}

	return VerificationSuccess, nil
}

package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается Compare, если пароль не совпадает с хэшем.
var ErrMismatch = errors.New("password mismatch")

// Cost bcrypt для паролей и кодов подтверждения.
const Cost = bcrypt.DefaultCost

// Hash возвращает bcrypt-хэш секрета: пароля или кода подтверждения.
func Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare проверяет секрет по хэшу. Несовпадение возвращается как ErrMismatch,
// повреждённый хэш как исходная ошибка bcrypt.
func Compare(hash, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

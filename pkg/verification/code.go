package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// maxCodeLength ограничивает длину кода, чтобы 10^length помещалось в int64.
const maxCodeLength = 18

// GenerateNumericCode возвращает случайный код из length цифр (ведущие нули допустимы).
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 || length > maxCodeLength {
		return "", fmt.Errorf("code length must be in 1..%d, got %d", maxCodeLength, length)
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}

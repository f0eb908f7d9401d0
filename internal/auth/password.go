package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost: фиксированная стоимость bcrypt для всей системы.
const DefaultCost = 12

// ErrPasswordTooLong: bcrypt учитывает только первые 72 байта пароля.
var ErrPasswordTooLong = errors.New("пароль длиннее 72 байт")

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultCost}
}

// NewPasswordHasherWithCost нужен тестам, которым не нужна полная стоимость.
// Стоимость вне [bcrypt.MinCost, bcrypt.MaxCost] заменяется на DefaultCost.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хеш со встроенной случайной солью,
// поэтому два вызова для одного пароля дают разные строки.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

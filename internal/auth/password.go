package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost 12 keeps hashing slow enough to blunt offline guessing without
// stalling the login path.
const passwordHashCost = 12

// ErrPasswordTooShort rejects passwords under eight characters before any
// hashing happens.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// HashPassword derives the stored bcrypt hash for a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash; a
// non-nil error means it does not.
func VerifyPassword(storedHash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
}

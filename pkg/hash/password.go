package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength mirrors the validation on incoming payloads, so a request
// that passes validation never fails here.
const MinPasswordLength = 8

const bcryptCost = 12

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

func Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

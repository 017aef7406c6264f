// Package security implements session based authentication and password
// handling for the dashboard API.
package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/noisewatch/noisewatch-go/internal/errors"
)

// bcryptCost matches the cost used for existing stored hashes.
const bcryptCost = 10

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.Newf("password must be at least %d characters", MinPasswordLength).
			Component("security").
			Category(errors.CategoryValidation).
			Build()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryGeneric).
			Build()
	}
	return string(hash), nil
}

// CheckPassword reports whether a plaintext password matches a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

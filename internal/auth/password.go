package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for password hashing.
const BcryptCost = 12

var (
	// ErrPasswordTooShort is returned when a password is less than 8 characters.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte input limit.
	ErrPasswordTooLong = errors.New("password must not exceed 72 characters")
)

// ValidatePassword enforces the password length policy shared by registration
// and password change.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < 8 {
		return ErrPasswordTooShort
	}
	if len(plaintext) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword applies a salted bcrypt transform. Two calls on the same input
// yield different digests.
func HashPassword(plaintext string) (string, error) {
	if err := ValidatePassword(plaintext); err != nil {
		return "", err
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches the stored digest.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

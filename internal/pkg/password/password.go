package password

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength is the shortest password accepted for new credentials.
	MinLength = 6
	// MaxBytes is the bcrypt input limit.
	MaxBytes = 72
)

var (
	// ErrTooShort is returned for passwords below MinLength runes.
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)
	// ErrTooLong is returned for passwords over MaxBytes bytes.
	ErrTooLong = fmt.Errorf("password must be at most %d bytes", MaxBytes)
)

// Hash returns the bcrypt hash of plain.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. Malformed hashes never match.
func Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// Validate checks a new password against the length policy.
func Validate(plain string) error {
	if utf8.RuneCountInString(plain) < MinLength {
		return ErrTooShort
	}
	if len(plain) > MaxBytes {
		return ErrTooLong
	}
	return nil
}

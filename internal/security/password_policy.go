package security

import (
	"errors"
	"unicode"
)

const MinPasswordLength = 8

var ErrWeakPassword = errors.New("password needs at least 8 characters with upper case, lower case and a digit")

// ValidatePasswordStrength applies to operator-chosen passwords; generated ones
// come from TemporaryPassword.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if hasUpper && hasLower && hasDigit {
		return nil
	}
	return ErrWeakPassword
}

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// TemporaryPassword draws from an alphabet without look-alike characters.
func TemporaryPassword(length int) (string, error) {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}
	return RandomString(length, temporaryPasswordAlphabet)
}

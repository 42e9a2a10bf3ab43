package security

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordStrengthRejectsWeakPasswords(t *testing.T) {
	t.Parallel()

	for _, password := range []string{"Short1", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		if err := ValidatePasswordStrength(password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestValidatePasswordStrengthAcceptsStrongPassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePasswordStrength("Clinica2026"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestTemporaryPassword(t *testing.T) {
	t.Parallel()

	short, err := TemporaryPassword(4)
	if err != nil {
		t.Fatalf("TemporaryPassword returned error: %v", err)
	}
	if len(short) != MinPasswordLength {
		t.Fatalf("TemporaryPassword minimum len = %d, want %d", len(short), MinPasswordLength)
	}

	password, err := TemporaryPassword(24)
	if err != nil {
		t.Fatalf("TemporaryPassword returned error: %v", err)
	}
	if len(password) != 24 {
		t.Fatalf("TemporaryPassword len = %d, want 24", len(password))
	}
	for _, char := range password {
		if !strings.ContainsRune(temporaryPasswordAlphabet, char) {
			t.Fatalf("password %q contains char %q outside alphabet", password, char)
		}
	}
}

// Package cli holds the operator commands that manage remote identities.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dentclinic/internal/db"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordLength = 12

var ErrUserExists = errors.New("user already exists")

type CreateUserOptions struct {
	Email string
	Role  string
	// Password is optional; a temporary one is generated and printed when empty.
	Password string
}

func CreateUser(ctx context.Context, repos *db.Repositories, options CreateUserOptions, out io.Writer) error {
	email, err := normalizeOperatorEmail(options.Email)
	if err != nil {
		return err
	}
	role, err := normalizeRole(options.Role)
	if err != nil {
		return err
	}

	if _, found, err := repos.Users.FindByNormalizedEmail(ctx, email); err != nil {
		return fmt.Errorf("load user: %w", err)
	} else if found {
		return fmt.Errorf("%s: %w", email, ErrUserExists)
	}

	password, generated, err := resolvePassword(options.Password)
	if err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: string(passwordHash), CreatedAt: now}
	if err := repos.Users.Create(ctx, &user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	profile := models.Profile{ID: user.ID, Email: email, Role: role, CreatedAt: now}
	if err := repos.Profiles.Create(ctx, &profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	fmt.Fprintf(out, "Created %s user %s (%s)\n", role, email, user.ID)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

func ResetPassword(ctx context.Context, repos *db.Repositories, email string, password string, out io.Writer) error {
	normalizedEmail, err := normalizeOperatorEmail(email)
	if err != nil {
		return err
	}

	user, found, err := repos.Users.FindByNormalizedEmail(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}

	password, generated, err := resolvePassword(password)
	if err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repos.Users.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s\n", normalizedEmail)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

// SetRole changes the role of an existing identity, creating its profile when missing.
func SetRole(ctx context.Context, repos *db.Repositories, email string, role string, out io.Writer) error {
	normalizedEmail, err := normalizeOperatorEmail(email)
	if err != nil {
		return err
	}
	role, err = normalizeRole(role)
	if err != nil {
		return err
	}

	user, found, err := repos.Users.FindByNormalizedEmail(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}

	_, hasProfile, err := repos.Profiles.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if hasProfile {
		err = repos.Profiles.UpdateRole(ctx, user.ID, role)
	} else {
		err = repos.Profiles.Create(ctx, &models.Profile{ID: user.ID, Email: user.Email, Role: role, CreatedAt: time.Now().UTC()})
	}
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	fmt.Fprintf(out, "%s is now %s\n", normalizedEmail, role)
	return nil
}

func normalizeOperatorEmail(raw string) (string, error) {
	email := db.NormalizeEmail(raw)
	if email == "" {
		return "", errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address: %w", err)
	}
	return email, nil
}

func normalizeRole(raw string) (string, error) {
	switch raw {
	case "":
		return models.RoleUser, nil
	case models.RoleAdmin, models.RoleUser:
		return raw, nil
	default:
		return "", fmt.Errorf("role must be %q or %q, got %q", models.RoleAdmin, models.RoleUser, raw)
	}
}

func resolvePassword(chosen string) (string, bool, error) {
	if chosen != "" {
		if err := security.ValidatePasswordStrength(chosen); err != nil {
			return "", false, err
		}
		return chosen, false, nil
	}

	generated, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", false, fmt.Errorf("generate temporary password: %w", err)
	}
	return generated, true, nil
}

package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type UserFinder interface {
	FindByID(ctx context.Context, userID string) (models.User, bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
}

type ProfileStore interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, bool, error)
	Create(ctx context.Context, profile *models.Profile) error
}

// RemoteAuthenticator checks bcrypt credentials from the users table and reads the
// role from profiles, creating a "user" profile on first sight.
type RemoteAuthenticator struct {
	users    UserFinder
	profiles ProfileStore
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewRemoteAuthenticator(users UserFinder, profiles ProfileStore, logger logrus.FieldLogger) *RemoteAuthenticator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RemoteAuthenticator{users: users, profiles: profiles, logger: logger, now: time.Now}
}

func (auth *RemoteAuthenticator) Authenticate(ctx context.Context, email string, password string) (models.Identity, error) {
	user, ok, err := auth.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.Identity{}, &store.BackendError{Op: "sign in", Err: err}
	}
	if !ok {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}

	return models.Identity{ID: user.ID, Email: user.Email, Role: auth.roleFor(ctx, user)}, nil
}

func (auth *RemoteAuthenticator) Resolve(ctx context.Context, identity models.Identity) (models.Identity, error) {
	user, ok, err := auth.users.FindByID(ctx, identity.ID)
	if err != nil {
		return models.Identity{}, &store.BackendError{Op: "check session", Err: err}
	}
	if !ok {
		return models.Identity{}, ErrNoSession
	}
	return models.Identity{ID: user.ID, Email: user.Email, Role: auth.roleFor(ctx, user)}, nil
}

func (auth *RemoteAuthenticator) Forget(context.Context, models.Identity) error {
	return nil
}

// roleFor never blocks a sign-in: profile failures are logged and fall back to "user".
func (auth *RemoteAuthenticator) roleFor(ctx context.Context, user models.User) string {
	logger := auth.logger.WithField("user_id", user.ID)

	profile, ok, err := auth.profiles.FindByID(ctx, user.ID)
	if err != nil {
		logger.WithError(err).Warn("profile lookup failed")
		return models.RoleUser
	}
	if ok && models.IsKnownRole(profile.Role) {
		return profile.Role
	}
	if ok {
		return models.RoleUser
	}

	created := models.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Role:      models.RoleUser,
		CreatedAt: auth.now().UTC(),
	}
	if err := auth.profiles.Create(ctx, &created); err != nil {
		logger.WithError(err).Warn("default profile creation failed")
	} else {
		logger.Info("created default profile")
	}
	return models.RoleUser
}

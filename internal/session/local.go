package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
)

// IdentityKey is where the signed-in dev identity is kept in the local namespace.
const IdentityKey = "dentclinic-user"

type devUser struct {
	identity models.Identity
	password string
}

var devUsers = []devUser{
	{
		identity: models.Identity{ID: "admin-id-123", Email: "admin@dentclinic.com", Role: models.RoleAdmin},
		password: "admin123",
	},
	{
		identity: models.Identity{ID: "user-id-123", Email: "user@dentclinic.com", Role: models.RoleUser},
		password: "user123",
	},
}

// LocalAuthenticator signs in the fixed dev users and keeps the current one in the
// local key-value namespace.
type LocalAuthenticator struct {
	kv     store.KeyValue
	logger logrus.FieldLogger
}

func NewLocalAuthenticator(kv store.KeyValue, logger logrus.FieldLogger) *LocalAuthenticator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LocalAuthenticator{kv: kv, logger: logger}
}

func (auth *LocalAuthenticator) Authenticate(ctx context.Context, email string, password string) (models.Identity, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, candidate := range devUsers {
		if candidate.identity.Email != normalized || candidate.password != password {
			continue
		}

		encoded, err := json.Marshal(candidate.identity)
		if err != nil {
			return models.Identity{}, err
		}
		if err := auth.kv.Set(ctx, IdentityKey, string(encoded)); err != nil {
			return models.Identity{}, err
		}
		return candidate.identity, nil
	}
	return models.Identity{}, ErrInvalidCredentials
}

func (auth *LocalAuthenticator) Resolve(ctx context.Context, identity models.Identity) (models.Identity, error) {
	raw, ok, err := auth.kv.Get(ctx, IdentityKey)
	if err != nil {
		return models.Identity{}, err
	}
	if !ok {
		return models.Identity{}, ErrNoSession
	}

	var stored models.Identity
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.ID == "" || stored.Email == "" {
		auth.logger.WithError(err).Warn("stored dev identity is corrupt, removing it")
		if err := auth.kv.Delete(ctx, IdentityKey); err != nil {
			return models.Identity{}, err
		}
		return models.Identity{}, ErrNoSession
	}
	if stored.ID != identity.ID {
		return models.Identity{}, ErrNoSession
	}
	return stored, nil
}

func (auth *LocalAuthenticator) Forget(ctx context.Context, _ models.Identity) error {
	return auth.kv.Delete(ctx, IdentityKey)
}

// Package session tracks who is signed in to the console. A Store is owned by a
// single caller (one HTTP request, one CLI run) and delegates credential checks
// to an Authenticator chosen when the process is composed.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/dentclinic/internal/models"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoSession           = errors.New("no active session")
)

// Authenticator issues and re-validates identities for one backend variant.
type Authenticator interface {
	Authenticate(ctx context.Context, email string, password string) (models.Identity, error)
	// Resolve returns the current view of a previously issued identity, or
	// ErrNoSession when it is no longer valid.
	Resolve(ctx context.Context, identity models.Identity) (models.Identity, error)
	Forget(ctx context.Context, identity models.Identity) error
}

// TokenHolder persists the signed session token between calls, e.g. in a cookie.
type TokenHolder interface {
	Token() string
	SetToken(token string, ttl time.Duration)
	ClearToken()
}

type Store struct {
	authenticator Authenticator
	tokens        *Tokens
	holder        TokenHolder

	state    State
	identity models.Identity
}

func NewStore(authenticator Authenticator, tokens *Tokens, holder TokenHolder) *Store {
	return &Store{
		authenticator: authenticator,
		tokens:        tokens,
		holder:        holder,
		state:         StateChecking,
	}
}

func (store *Store) State() State {
	return store.state
}

// Identity returns the signed-in identity; ok is false unless the store is authenticated.
func (store *Store) Identity() (models.Identity, bool) {
	if store.state != StateAuthenticated {
		return models.Identity{}, false
	}
	return store.identity, true
}

func (store *Store) SignIn(ctx context.Context, email string, password string) (models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		store.reset()
		return models.Identity{}, ErrCredentialsRequired
	}

	store.state = StateChecking
	identity, err := store.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		store.reset()
		return models.Identity{}, err
	}

	token, err := store.tokens.Issue(identity)
	if err != nil {
		store.reset()
		return models.Identity{}, err
	}
	store.holder.SetToken(token, store.tokens.TTL())

	store.state = StateAuthenticated
	store.identity = identity
	return identity, nil
}

// SignOut always leaves the store unauthenticated and the token cleared; the
// returned error only reports a failure to forget the identity on the backend.
func (store *Store) SignOut(ctx context.Context) error {
	identity, known := store.Identity()
	if !known {
		if parsed, err := store.tokens.Parse(store.holder.Token()); err == nil {
			identity = parsed
			known = true
		}
	}

	store.holder.ClearToken()
	store.reset()

	if !known {
		return nil
	}
	return store.authenticator.Forget(ctx, identity)
}

// CheckAuth resolves the persisted token. Missing, expired or revoked sessions end
// unauthenticated without an error; backend failures end unauthenticated and are returned.
func (store *Store) CheckAuth(ctx context.Context) error {
	store.state = StateChecking

	raw := strings.TrimSpace(store.holder.Token())
	if raw == "" {
		store.reset()
		return nil
	}

	claimed, err := store.tokens.Parse(raw)
	if err != nil {
		store.holder.ClearToken()
		store.reset()
		return nil
	}

	identity, err := store.authenticator.Resolve(ctx, claimed)
	if errors.Is(err, ErrNoSession) {
		store.holder.ClearToken()
		store.reset()
		return nil
	}
	if err != nil {
		store.reset()
		return err
	}

	store.state = StateAuthenticated
	store.identity = identity
	return nil
}

func (store *Store) reset() {
	store.state = StateUnauthenticated
	store.identity = models.Identity{}
}

package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/session"
)

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type sessionView struct {
	State session.State    `json:"state"`
	User  *models.Identity `json:"user"`
}

func viewOf(store *session.Store) sessionView {
	view := sessionView{State: store.State()}
	if identity, ok := store.Identity(); ok {
		view.User = &identity
	}
	return view
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, input.Email)
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginAttemptLimit, loginAttemptWindow) {
		wait := handler.loginLimiter.retryAfter(limiterKey, now, loginAttemptWindow)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return handler.apiError(c, fiber.StatusTooManyRequests, "error.too_many_attempts")
	}

	store := handler.newSession(c)
	identity, err := store.SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(limiterKey, now, loginAttemptWindow)
		}
		return handler.respondError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	handler.logger.WithField("user_id", identity.ID).Info("signed in")
	return c.JSON(viewOf(store))
}

// Logout clears the cookie even when the backend fails to forget the identity.
func (handler *Handler) Logout(c *fiber.Ctx) error {
	store := handler.newSession(c)
	if err := store.SignOut(c.UserContext()); err != nil {
		handler.logger.WithError(err).Warn("sign out could not reach the backend")
	}
	return c.JSON(viewOf(store))
}

func (handler *Handler) Session(c *fiber.Ctx) error {
	store := handler.newSession(c)
	if err := store.CheckAuth(c.UserContext()); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(viewOf(store))
}

func (handler *Handler) Profile(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	return c.JSON(identity)
}

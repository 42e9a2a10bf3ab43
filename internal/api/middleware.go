package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/session"
)

// cookieTokenHolder keeps the session token in the request's HTTP-only cookie.
type cookieTokenHolder struct {
	c      *fiber.Ctx
	secure bool
}

func (holder cookieTokenHolder) Token() string {
	return holder.c.Cookies(authCookieName)
}

func (holder cookieTokenHolder) SetToken(token string, ttl time.Duration) {
	holder.c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   holder.secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(ttl),
	})
}

func (holder cookieTokenHolder) ClearToken() {
	holder.c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   holder.secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// newSession builds the session store owned by this request.
func (handler *Handler) newSession(c *fiber.Ctx) *session.Store {
	return session.NewStore(handler.authenticator, handler.tokens, cookieTokenHolder{c: c, secure: handler.cookieSecure})
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	store := handler.newSession(c)
	if err := store.CheckAuth(c.UserContext()); err != nil {
		return handler.respondError(c, err)
	}

	identity, ok := store.Identity()
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	c.Locals(contextIdentityKey, identity)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	if !identity.IsAdmin() {
		return handler.apiError(c, fiber.StatusForbidden, "error.forbidden")
	}
	return c.Next()
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if cookieLanguage := c.Cookies(languageCookieName); cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func currentIdentity(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(contextIdentityKey).(models.Identity)
	return identity, ok
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
}

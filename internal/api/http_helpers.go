package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/services"
	"github.com/terraincognita07/dentclinic/internal/session"
	"github.com/terraincognita07/dentclinic/internal/store"
)

func (handler *Handler) apiError(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(fiber.Map{"error": handler.i18n.Translate(handler.currentLanguage(c), key)})
}

// respondError maps service and store failures onto status codes and a localized message.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": handler.i18n.Translate(handler.currentLanguage(c), "validation."+validationErr.Reason),
			"field": validationErr.Field,
		})
	case errors.Is(err, services.ErrSlotUnavailable):
		return handler.apiError(c, fiber.StatusConflict, "error.slot_unavailable")
	case errors.Is(err, services.ErrAppointmentNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.appointment_not_found")
	case errors.Is(err, services.ErrPatientNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.patient_not_found")
	case errors.Is(err, services.ErrNotificationNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.notification_not_found")
	case errors.Is(err, store.ErrNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.not_found")
	case errors.Is(err, session.ErrCredentialsRequired):
		return handler.apiError(c, fiber.StatusBadRequest, "error.credentials_required")
	case errors.Is(err, session.ErrInvalidCredentials):
		return handler.apiError(c, fiber.StatusUnauthorized, "error.invalid_credentials")
	case store.IsBackendError(err):
		handler.logger.WithError(err).WithField("path", c.Path()).Warn("backend call failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  handler.i18n.Translate(handler.currentLanguage(c), "error.backend"),
			"detail": err.Error(),
		})
	default:
		handler.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
		return handler.apiError(c, fiber.StatusInternalServerError, "error.internal")
	}
}

func (handler *Handler) invalidInput(c *fiber.Ctx) error {
	return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
}

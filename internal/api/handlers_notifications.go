package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/services"
)

type notificationsView struct {
	Tab           string                `json:"tab"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type remindersView struct {
	Created       int                   `json:"created"`
	Notifications []models.Notification `json:"notifications"`
}

func (handler *Handler) ListNotifications(c *fiber.Ctx) error {
	tab := strings.TrimSpace(c.Query("tab"))
	if tab == "" {
		tab = services.TabAll
	}

	notifications, err := handler.notifications.List(c.UserContext(), tab)
	if err != nil {
		return handler.respondError(c, err)
	}
	unread, err := handler.notifications.UnreadCount(c.UserContext())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(notificationsView{Tab: tab, Notifications: notifications, UnreadCount: unread})
}

func (handler *Handler) SendNotification(c *fiber.Ctx) error {
	input := services.SendInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	notification, err := handler.notifications.Send(c.UserContext(), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(notification)
}

func (handler *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	if err := handler.notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateReminders runs tomorrow's reminder pass on demand, outside the cron schedule.
func (handler *Handler) CreateReminders(c *fiber.Ctx) error {
	created, err := handler.notifications.CreateAppointmentReminders(c.UserContext(), handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	if handler.metrics != nil {
		handler.metrics.RecordReminders(len(created))
	}
	return c.JSON(remindersView{Created: len(created), Notifications: created})
}

package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/services"
)

type availabilityView struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// GetDaySchedule renders a calendar day; without ?date= it is today in the clinic's location.
func (handler *Handler) GetDaySchedule(c *fiber.Ctx) error {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = handler.today()
	}

	schedule, err := handler.appointments.DaySchedule(c.UserContext(), date)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(schedule)
}

func (handler *Handler) CheckAvailability(c *fiber.Ctx) error {
	date := strings.TrimSpace(c.Query("date"))
	slot := strings.TrimSpace(c.Query("time"))

	available, err := handler.appointments.IsAvailable(c.UserContext(), date, slot)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(availabilityView{Date: date, Time: slot, Available: available})
}

func (handler *Handler) BookAppointment(c *fiber.Ctx) error {
	input := services.BookingInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	appointment, err := handler.appointments.Book(c.UserContext(), input)
	handler.recordBooking(err)
	if err != nil {
		return handler.respondError(c, err)
	}

	handler.logger.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"date":           appointment.Date,
		"time":           appointment.Time,
	}).Info("appointment booked")
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

func (handler *Handler) recordBooking(err error) {
	if handler.metrics == nil {
		return
	}
	switch {
	case err == nil:
		handler.metrics.RecordBooking("booked")
	case errors.Is(err, services.ErrSlotUnavailable):
		handler.metrics.RecordBooking("conflict")
	case services.IsValidationError(err):
		handler.metrics.RecordBooking("invalid")
	default:
		handler.metrics.RecordBooking("error")
	}
}

func (handler *Handler) CancelAppointment(c *fiber.Ctx) error {
	if err := handler.appointments.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) CompleteAppointment(c *fiber.Ctx) error {
	if err := handler.appointments.Complete(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/services"
)

func (handler *Handler) ListPatients(c *fiber.Ctx) error {
	patients, err := handler.patients.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(patients)
}

func (handler *Handler) SuggestPatients(c *fiber.Ctx) error {
	patients, err := handler.patients.Suggest(c.UserContext(), c.Query("name"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(patients)
}

func (handler *Handler) CreatePatient(c *fiber.Ctx) error {
	input := services.PatientInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	patient, err := handler.patients.Create(c.UserContext(), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(patient)
}

func (handler *Handler) UpdatePatient(c *fiber.Ctx) error {
	input := services.PatientInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	patient, err := handler.patients.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(patient)
}

func (handler *Handler) DeletePatient(c *fiber.Ctx) error {
	if err := handler.patients.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

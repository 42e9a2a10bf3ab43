package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	if handler.metrics != nil {
		app.Get("/metrics", handler.metrics.Handler())
	}
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.LanguageMiddleware)

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/session", handler.Session)

	api.Get("/profile", handler.AuthRequired, handler.Profile)

	patients := api.Group("/patients", handler.AuthRequired)
	patients.Get("", handler.ListPatients)
	patients.Post("", handler.CreatePatient)
	patients.Get("/suggest", handler.SuggestPatients)
	patients.Put("/:id", handler.UpdatePatient)
	patients.Delete("/:id", handler.DeletePatient)

	appointments := api.Group("/appointments", handler.AuthRequired)
	appointments.Get("", handler.GetDaySchedule)
	appointments.Post("", handler.BookAppointment)
	appointments.Get("/slots/availability", handler.CheckAvailability)
	appointments.Post("/:id/cancel", handler.CancelAppointment)
	appointments.Post("/:id/complete", handler.CompleteAppointment)

	financial := api.Group("/financial", handler.AuthRequired, handler.AdminOnly)
	financial.Get("", handler.ListFinancialRecords)
	financial.Post("", handler.CreateFinancialRecord)
	financial.Get("/categories", handler.FinancialCategories)
	financial.Get("/export.csv", handler.ExportFinancialCSV)

	notifications := api.Group("/notifications", handler.AuthRequired)
	notifications.Get("", handler.ListNotifications)
	notifications.Post("", handler.SendNotification)
	notifications.Post("/reminders", handler.CreateReminders)
	notifications.Post("/:id/read", handler.MarkNotificationRead)
}

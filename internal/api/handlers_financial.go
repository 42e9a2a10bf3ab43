package api

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/services"
)

type financialFilterView struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

type financialView struct {
	Records []models.FinancialRecord  `json:"records"`
	Summary services.FinancialSummary `json:"summary"`
	Filter  financialFilterView       `json:"filter"`
}

// ListFinancialRecords returns the filtered ledger and the totals of what it shows.
func (handler *Handler) ListFinancialRecords(c *fiber.Ctx) error {
	filter := services.FinancialFilter{Type: c.Query("type"), Category: c.Query("category")}

	records, err := handler.financial.List(c.UserContext(), filter)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(financialView{
		Records: records,
		Summary: handler.financial.Summarize(records),
		Filter:  financialFilterView{Type: filter.Type, Category: filter.Category},
	})
}

func (handler *Handler) CreateFinancialRecord(c *fiber.Ctx) error {
	input := services.FinancialInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.invalidInput(c)
	}

	record, err := handler.financial.Create(c.UserContext(), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (handler *Handler) FinancialCategories(c *fiber.Ctx) error {
	return c.JSON(handler.financial.Categories())
}

// ExportFinancialCSV streams the filtered ledger as a CSV attachment, oldest first.
func (handler *Handler) ExportFinancialCSV(c *fiber.Ctx) error {
	exportRange, err := services.ParseExportRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}

	filter := services.FinancialFilter{Type: c.Query("type"), Category: c.Query("category")}
	records, err := handler.financial.ExportRecords(c.UserContext(), filter, exportRange)
	if err != nil {
		return handler.respondError(c, err)
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.FinancialCSVHeaders); err != nil {
		return handler.respondError(c, err)
	}
	for _, record := range records {
		if err := writer.Write(services.FinancialCSVRow(record)); err != nil {
			return handler.respondError(c, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return handler.respondError(c, err)
	}

	filename := fmt.Sprintf("dentclinic-financeiro-%s.csv", handler.today())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(output.Bytes())
}

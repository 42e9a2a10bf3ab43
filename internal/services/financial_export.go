package services

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/terraincognita07/dentclinic/internal/models"
)

var FinancialCSVHeaders = []string{
	"Data",
	"Tipo",
	"Categoria",
	"Descrição",
	"Valor",
}

// ExportRange bounds an export by inclusive YYYY-MM-DD days; empty bounds are open.
type ExportRange struct {
	From string
	To   string
}

func ParseExportRange(rawFrom string, rawTo string) (ExportRange, error) {
	exportRange := ExportRange{From: strings.TrimSpace(rawFrom), To: strings.TrimSpace(rawTo)}

	if exportRange.From != "" {
		if _, err := ParseDay(exportRange.From); err != nil {
			return ExportRange{}, invalid("from", ReasonInvalidDate)
		}
	}
	if exportRange.To != "" {
		if _, err := ParseDay(exportRange.To); err != nil {
			return ExportRange{}, invalid("to", ReasonInvalidDate)
		}
	}
	if exportRange.From != "" && exportRange.To != "" && exportRange.To < exportRange.From {
		return ExportRange{}, invalid("to", ReasonInvalidRange)
	}
	return exportRange, nil
}

func (exportRange ExportRange) contains(day string) bool {
	if exportRange.From != "" && day < exportRange.From {
		return false
	}
	if exportRange.To != "" && day > exportRange.To {
		return false
	}
	return true
}

// ExportRecords returns the filtered ledger inside the range, oldest first.
func (service *FinancialService) ExportRecords(ctx context.Context, filter FinancialFilter, exportRange ExportRange) ([]models.FinancialRecord, error) {
	records, err := service.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	selected := make([]models.FinancialRecord, 0, len(records))
	for _, record := range records {
		if exportRange.contains(record.Date) {
			selected = append(selected, record)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date < selected[j].Date
	})
	return selected, nil
}

// FinancialCSVRow renders one ledger line; amounts stay machine readable.
func FinancialCSVRow(record models.FinancialRecord) []string {
	return []string{
		record.Date,
		record.Type,
		csvText(record.Category),
		csvText(record.Description),
		strconv.FormatFloat(record.Amount, 'f', 2, 64),
	}
}

// csvText keeps spreadsheets from evaluating free text as a formula.
func csvText(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

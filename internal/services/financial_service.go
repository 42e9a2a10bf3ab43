package services

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const filterAll = "all"

type FinancialFilter struct {
	Type     string
	Category string
}

type FinancialInput struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

type FinancialSummary struct {
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"`
	Balance           float64 `json:"balance"`
	FormattedIncome   string  `json:"formatted_income"`
	FormattedExpenses string  `json:"formatted_expenses"`
	FormattedBalance  string  `json:"formatted_balance"`
}

type FinancialService struct {
	store   store.Persistence
	now     func() time.Time
	printer *message.Printer
}

func NewFinancialService(persistence store.Persistence) *FinancialService {
	return &FinancialService{
		store:   persistence,
		now:     time.Now,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

func (service *FinancialService) Categories() map[string][]string {
	return map[string][]string{
		models.FinancialIncome:  models.IncomeCategories(),
		models.FinancialExpense: models.ExpenseCategories(),
	}
}

// List returns the ledger newest first. An empty or "all" type keeps both kinds.
func (service *FinancialService) List(ctx context.Context, filter FinancialFilter) ([]models.FinancialRecord, error) {
	query := store.Query{}.Desc("date")

	recordType := strings.TrimSpace(filter.Type)
	if recordType != "" && recordType != filterAll {
		if models.CategoriesFor(recordType) == nil {
			return nil, invalid("type", ReasonInvalidType)
		}
		query = query.Eq("type", recordType)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Eq("category", category)
	}

	records := make([]models.FinancialRecord, 0)
	if err := service.store.List(ctx, store.FinancialRecords, query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (service *FinancialService) Create(ctx context.Context, input FinancialInput) (models.FinancialRecord, error) {
	input.Type = strings.TrimSpace(input.Type)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.Category = strings.TrimSpace(input.Category)
	amount := math.Round(input.Amount*100) / 100

	categories := models.CategoriesFor(input.Type)
	switch {
	case categories == nil:
		return models.FinancialRecord{}, invalid("type", ReasonInvalidType)
	case input.Description == "":
		return models.FinancialRecord{}, invalid("description", ReasonRequired)
	case math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || amount <= 0:
		return models.FinancialRecord{}, invalid("amount", ReasonInvalidAmount)
	case input.Category == "":
		return models.FinancialRecord{}, invalid("category", ReasonRequired)
	case !slices.Contains(categories, input.Category):
		return models.FinancialRecord{}, invalid("category", ReasonInvalidChoice)
	}
	if _, err := ParseDay(input.Date); err != nil {
		return models.FinancialRecord{}, err
	}

	record := models.FinancialRecord{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Description: input.Description,
		Amount:      amount,
		Date:        input.Date,
		Category:    input.Category,
		CreatedAt:   stamp(service.now()),
	}
	if err := service.store.Insert(ctx, store.FinancialRecords, &record); err != nil {
		return models.FinancialRecord{}, err
	}
	return record, nil
}

func (service *FinancialService) Summarize(records []models.FinancialRecord) FinancialSummary {
	var income, expenses float64
	for _, record := range records {
		switch record.Type {
		case models.FinancialIncome:
			income += record.Amount
		case models.FinancialExpense:
			expenses += record.Amount
		}
	}
	income = math.Round(income*100) / 100
	expenses = math.Round(expenses*100) / 100
	balance := math.Round((income-expenses)*100) / 100

	return FinancialSummary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		Balance:           balance,
		FormattedIncome:   service.FormatCurrency(income),
		FormattedExpenses: service.FormatCurrency(expenses),
		FormattedBalance:  service.FormatCurrency(balance),
	}
}

// FormatCurrency renders an amount in Brazilian reais, e.g. "R$ 1.234,56".
func (service *FinancialService) FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-" + service.printer.Sprintf("R$ %.2f", -amount)
	}
	return service.printer.Sprintf("R$ %.2f", amount)
}

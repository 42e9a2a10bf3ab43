package models

import "time"

const (
	FinancialIncome  = "income"
	FinancialExpense = "expense"
)

type FinancialRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Date        string    `json:"date" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func IncomeCategories() []string {
	return []string{"Consulta", "Procedimento", "Produto", "Outro"}
}

func ExpenseCategories() []string {
	return []string{
		"Material",
		"Salário",
		"Aluguel",
		"Marketing",
		"Impostos",
		"Manutenção",
		"Utilidades",
		"Outro",
	}
}

// CategoriesFor returns the categories accepted for a record type, or nil for an unknown type.
func CategoriesFor(recordType string) []string {
	switch recordType {
	case FinancialIncome:
		return IncomeCategories()
	case FinancialExpense:
		return ExpenseCategories()
	default:
		return nil
	}
}

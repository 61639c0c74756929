package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Settings struct {
	CompanyName       string
	CompanyAddress    string
	CompanyPhone      string
	CompanyEmail      string
	TaxRate           decimal.Decimal
	Currency          string
	LowStockThreshold int
	InvoicePrefix     string
	UpdatedBy         *int64 // nil until someone saves settings
	UpdatedAt         time.Time
}

package model

import (
	"github.com/shopspring/decimal"
)

// AmountByGroup is one row of a GROUP BY over expense amounts.
type AmountByGroup struct {
	Name  string
	Total decimal.Decimal
	Count int64
}

// InvoiceTotals sums contract invoices by status.
type InvoiceTotals struct {
	Status string
	Total  decimal.Decimal
	Count  int64
}

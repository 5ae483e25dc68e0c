// Package report turns a filtered expense set into the detail list and the
// per-project and per-cost-center totals shown on screen and exported.
package report

import (
	"sort"
	"time"

	"sgo/internal/fieldschema"
	"sgo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HeadOfficeLabel groups expenses that are not linked to a project.
const HeadOfficeLabel = "Escritório Central"

type Filter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	ProjectIDs     []uuid.UUID
	CostCenterID   *uuid.UUID
	HeadOfficeOnly bool
	Descending     bool
}

type Line struct {
	ID               uuid.UUID
	Date             time.Time
	Project          string
	CostCenter       string
	Description      string
	SupplierName     string
	InvoiceNumber    string
	Observations     string
	Amount           decimal.Decimal
	FormattedDetails string
}

// Summary sums are keyed by display name. Two entities sharing a name share a bucket.
type Summary struct {
	ByProject     map[string]decimal.Decimal
	ByCostCenter  map[string]decimal.Decimal
	TotalExpenses decimal.Decimal
}

type Report struct {
	Filter      Filter
	Lines       []Line
	Summary     Summary
	GeneratedAt time.Time
}

// Build projects expenses into a report. Relations must be preloaded. A stored
// details payload that cannot be parsed yields an empty detail string.
func Build(expenses []model.Expense, filter Filter, log *zap.Logger) *Report {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Report{
		Filter: filter,
		Lines:  make([]Line, 0, len(expenses)),
		Summary: Summary{
			ByProject:     map[string]decimal.Decimal{},
			ByCostCenter:  map[string]decimal.Decimal{},
			TotalExpenses: decimal.Zero,
		},
		GeneratedAt: time.Now(),
	}

	for _, e := range expenses {
		line := Line{
			ID:            e.ID,
			Date:          e.Date,
			Project:       projectName(e),
			Description:   e.Description,
			SupplierName:  e.SupplierName,
			InvoiceNumber: e.InvoiceNumber,
			Observations:  e.Observations,
			Amount:        e.Amount,
		}

		code := ""
		if e.CostCenter != nil {
			line.CostCenter = e.CostCenter.Name
			code = e.CostCenter.Code
		}

		if e.DetailsJSON != "" {
			details, ok := fieldschema.ParseDetails(e.DetailsJSON)
			if ok {
				line.FormattedDetails = fieldschema.FormatDetails(code, details)
			} else {
				log.Warn("unreadable expense details", zap.String("expense_id", e.ID.String()))
			}
		}

		r.Lines = append(r.Lines, line)
		r.Summary.ByProject[line.Project] = r.Summary.ByProject[line.Project].Add(e.Amount)
		r.Summary.ByCostCenter[line.CostCenter] = r.Summary.ByCostCenter[line.CostCenter].Add(e.Amount)
		r.Summary.TotalExpenses = r.Summary.TotalExpenses.Add(e.Amount)
	}

	sort.SliceStable(r.Lines, func(i, j int) bool {
		if filter.Descending {
			return r.Lines[i].Date.After(r.Lines[j].Date)
		}
		return r.Lines[i].Date.Before(r.Lines[j].Date)
	})
	return r
}

func projectName(e model.Expense) string {
	if e.ProjectID == nil {
		return HeadOfficeLabel
	}
	if e.Project != nil {
		return e.Project.Name
	}
	return e.ProjectID.String()
}

// SortedKeys returns map keys in name order, for stable rendering.
func SortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

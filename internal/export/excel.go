// Package export renders expense reports as spreadsheet and PDF documents.
package export

import (
	"fmt"

	"sgo/internal/report"
	"sgo/pkg/format"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetExpenses = "Despesas"
	SheetSummary  = "Resumo"

	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF   = "application/pdf"
)

var expenseHeaders = []string{
	"Data", "Obra", "Centro de Custo", "Descrição", "Fornecedor",
	"Nota Fiscal", "Detalhes", "Observações", "Valor (R$)",
}

// Excel writes one row per report line on the "Despesas" sheet and the totals on "Resumo".
func Excel(r *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("#,##0.00")})
	if err != nil {
		return nil, err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: strPtr("#,##0.00")})
	if err != nil {
		return nil, err
	}

	for i, h := range expenseHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetExpenses, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(expenseHeaders), 1)
	if err := f.SetCellStyle(SheetExpenses, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, line := range r.Lines {
		row := i + 2
		values := []interface{}{
			format.Date(line.Date), line.Project, line.CostCenter, line.Description,
			line.SupplierName, line.InvoiceNumber, line.FormattedDetails, line.Observations,
			line.Amount.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetExpenses, cell, v); err != nil {
				return nil, err
			}
		}
		amountCell, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellStyle(SheetExpenses, amountCell, amountCell, money); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SheetExpenses, "A", "A", 12)
	_ = f.SetColWidth(SheetExpenses, "B", "H", 24)
	_ = f.SetColWidth(SheetExpenses, "I", "I", 16)

	if err := writeSummary(f, r, bold, money, boldMoney); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, r *report.Report, bold, money, boldMoney int) error {
	row := 1
	put := func(label string, amount *float64, labelStyle, amountStyle int) error {
		a := fmt.Sprintf("A%d", row)
		b := fmt.Sprintf("B%d", row)
		if err := f.SetCellValue(SheetSummary, a, label); err != nil {
			return err
		}
		if labelStyle != 0 {
			if err := f.SetCellStyle(SheetSummary, a, a, labelStyle); err != nil {
				return err
			}
		}
		if amount != nil {
			if err := f.SetCellValue(SheetSummary, b, *amount); err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetSummary, b, b, amountStyle); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	sections := []struct {
		title  string
		values map[string]decimal.Decimal
	}{
		{"Por Centro de Custo", r.Summary.ByCostCenter},
		{"Por Obra", r.Summary.ByProject},
	}
	for _, s := range sections {
		if err := put(s.title, nil, bold, 0); err != nil {
			return err
		}
		for _, name := range report.SortedKeys(s.values) {
			v := s.values[name].InexactFloat64()
			if err := put(name, &v, 0, money); err != nil {
				return err
			}
		}
		row++
	}

	total := r.Summary.TotalExpenses.InexactFloat64()
	if err := put("Total Geral", &total, bold, boldMoney); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 32)
}

func strPtr(s string) *string { return &s }

package export

import (
	"bytes"
	"testing"
	"time"

	"sgo/internal/report"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *report.Report {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	return &report.Report{
		Filter: report.Filter{StartDate: &start, EndDate: &end},
		Lines: []report.Line{{
			ID:               uuid.New(),
			Date:             time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Project:          report.HeadOfficeLabel,
			CostCenter:       "Combustível",
			Description:      "abastecimento",
			Amount:           decimal.RequireFromString("1250.50"),
			FormattedDetails: "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234",
		}},
		Summary: report.Summary{
			ByProject:     map[string]decimal.Decimal{report.HeadOfficeLabel: decimal.RequireFromString("1250.50")},
			ByCostCenter:  map[string]decimal.Decimal{"Combustível": decimal.RequireFromString("1250.50")},
			TotalExpenses: decimal.RequireFromString("1250.50"),
		},
		GeneratedAt: time.Now(),
	}
}

func TestExcel(t *testing.T) {
	data, err := Excel(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetExpenses, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, expenseHeaders, rows[0])
	assert.Equal(t, "10/03/2025", rows[1][0])
	assert.Equal(t, "Combustível", rows[1][2])
	assert.Equal(t, "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234", rows[1][6])

	raw, err := f.GetCellValue(SheetExpenses, "I2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1250.5", raw)

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, "Por Centro de Custo", summary[0][0])
	assert.Equal(t, "Combustível", summary[1][0])
	assert.Equal(t, "Total Geral", summary[len(summary)-1][0])
}

func TestExcelEmptyReport(t *testing.T) {
	r := report.Build(nil, report.Filter{}, nil)
	data, err := Excel(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFilename(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "relatorio-despesas-2025-03-01-a-2025-03-31.xlsx", Filename(r.Filter, "xlsx"))
	assert.Equal(t, "relatorio-despesas.pdf", Filename(report.Filter{}, "pdf"))
}

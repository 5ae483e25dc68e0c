package service

import (
	"testing"

	"sgo/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseReportFuelScenario(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")

	_, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: fuel.ID.String(),
		Description:  "Abastecimento caminhão",
		Amount:       money("250.00"),
		Date:         "2025-03-10",
		Details:      map[string]string{"placaVeiculo": "ABC-1234", "municipioUf": "Chapecó/SC"},
	})
	require.NoError(t, err)

	res, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)

	require.Len(t, res.DetailedExpenses, 1)
	line := res.DetailedExpenses[0]
	assert.Equal(t, "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234", line.FormattedDetails)
	assert.Equal(t, report.HeadOfficeLabel, line.Project)
	assert.Equal(t, "250.00", line.Amount)
	assert.Equal(t, "250.00", res.Summary.ByCostCenter["Combustível"])
	assert.Equal(t, "250.00", res.Summary.ByProject[report.HeadOfficeLabel])
	assert.Equal(t, "250.00", res.Summary.TotalExpenses)
	assert.Equal(t, "2025-03-01", *res.Filter.StartDate)
}

func TestExpenseReportEmpty(t *testing.T) {
	e := newEnv(t)

	res, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{StartDate: "2030-01-01", EndDate: "2030-01-31"})
	require.NoError(t, err)
	assert.Empty(t, res.DetailedExpenses)
	assert.Empty(t, res.Summary.ByProject)
	assert.Empty(t, res.Summary.ByCostCenter)
	assert.Equal(t, "0.00", res.Summary.TotalExpenses)
}

func TestExpenseReportTotalsAgree(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	material := e.costCenter(t, "materiais-de-construcao", "Materiais de Construção")
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	entries := []CreateExpenseRequest{
		{CostCenterID: fuel.ID.String(), Amount: money("100.10"), Date: "2025-03-01"},
		{CostCenterID: fuel.ID.String(), Amount: money("0.01"), Date: "2025-03-02", ProjectID: strp(project.ID), ContractID: strp(contract.ID)},
		{CostCenterID: material.ID.String(), Amount: money("1012.37"), Date: "2025-03-03", ProjectID: strp(project.ID), ContractID: strp(contract.ID)},
	}
	for _, req := range entries {
		_, err := e.expenses.CreateExpense(e.ctx, e.actor, req)
		require.NoError(t, err)
	}

	r, err := e.reports.BuildExpenseReport(e.ctx, e.actor, ExpenseQuery{})
	require.NoError(t, err)
	require.Len(t, r.Lines, 3)

	lineSum := decimal.Zero
	for _, l := range r.Lines {
		lineSum = lineSum.Add(l.Amount)
	}
	projectSum := decimal.Zero
	for _, v := range r.Summary.ByProject {
		projectSum = projectSum.Add(v)
	}
	centerSum := decimal.Zero
	for _, v := range r.Summary.ByCostCenter {
		centerSum = centerSum.Add(v)
	}
	want := decimal.RequireFromString("1112.48")
	assert.True(t, want.Equal(r.Summary.TotalExpenses))
	assert.True(t, want.Equal(lineSum))
	assert.True(t, want.Equal(projectSum))
	assert.True(t, want.Equal(centerSum))
	assert.True(t, decimal.RequireFromString("1012.38").Equal(r.Summary.ByProject["Residencial Aurora"]))

	t.Run("project filter", func(t *testing.T) {
		res, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{ProjectIDs: []string{project.ID}})
		require.NoError(t, err)
		assert.Len(t, res.DetailedExpenses, 2)
		assert.Equal(t, "1012.38", res.Summary.TotalExpenses)
	})

	t.Run("head office only", func(t *testing.T) {
		res, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{HeadOfficeOnly: true})
		require.NoError(t, err)
		assert.Len(t, res.DetailedExpenses, 1)
		assert.Equal(t, "100.10", res.Summary.TotalExpenses)
	})

	t.Run("descending order", func(t *testing.T) {
		res, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{Order: "desc"})
		require.NoError(t, err)
		require.Len(t, res.DetailedExpenses, 3)
		assert.Equal(t, "2025-03-03", res.DetailedExpenses[0].Date)
	})
}

func TestExpenseReportExports(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	_, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{CostCenterID: fuel.ID.String(), Amount: money("42"), Date: "2025-03-10"})
	require.NoError(t, err)

	query := ExpenseQuery{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	xlsx, err := e.reports.ExportExpenseReportExcel(e.ctx, e.actor, query)
	require.NoError(t, err)
	assert.Equal(t, "relatorio-despesas-2025-03-01-a-2025-03-31.xlsx", xlsx.Filename)
	assert.NotEmpty(t, xlsx.Data)

	pdf, err := e.reports.ExportExpenseReportPDF(e.ctx, e.actor, query)
	require.NoError(t, err)
	assert.Equal(t, "relatorio-despesas-2025-03-01-a-2025-03-31.pdf", pdf.Filename)
	assert.Equal(t, "%PDF", string(pdf.Data[:4]))

	_, err = e.reports.ExportExpenseReportPDF(e.ctx, e.actor, ExpenseQuery{StartDate: "ontem"})
	assert.ErrorIs(t, err, ErrValidation)
}

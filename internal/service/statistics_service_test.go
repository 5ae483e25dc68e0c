package service

import (
	"testing"
	"time"

	"sgo/internal/model"
	"sgo/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	e.statistics.now = func() time.Time { return date(2025, 3, 20) }

	fuel := e.costCenter(t, "combustivel", "Combustível")
	material := e.costCenter(t, "materiais-de-construcao", "Materiais de Construção")
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	for _, req := range []CreateExpenseRequest{
		{CostCenterID: fuel.ID.String(), Amount: money("250"), Date: "2025-03-10"},
		{CostCenterID: material.ID.String(), Amount: money("1000"), Date: "2025-03-12", ProjectID: strp(project.ID), ContractID: strp(contract.ID)},
		{CostCenterID: fuel.ID.String(), Amount: money("999"), Date: "2025-02-28"},
	} {
		_, err := e.expenses.CreateExpense(e.ctx, e.actor, req)
		require.NoError(t, err)
	}
	_, err := e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{Number: "1", IssueDate: "2025-03-05", Amount: money("5000")})
	require.NoError(t, err)
	_, err = e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{Number: "2", IssueDate: "2025-03-06", Amount: money("700"), Status: model.InvoicePaid})
	require.NoError(t, err)

	res, err := e.statistics.GetDashboard(e.ctx, e.actor, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", res.StartDate)
	assert.Equal(t, "2025-03-20", res.EndDate)
	assert.Equal(t, "1250.00", res.TotalExpenses)
	assert.EqualValues(t, 2, res.ExpenseCount)
	assert.EqualValues(t, 1, res.ActiveProjects)
	assert.Equal(t, "5000.00", res.InvoicedPending)
	assert.Equal(t, "700.00", res.InvoicedPaid)

	require.Len(t, res.ByCostCenter, 2)
	assert.Equal(t, "Materiais de Construção", res.ByCostCenter[0].Name)
	require.Len(t, res.ByProject, 2)
	names := []string{res.ByProject[0].Name, res.ByProject[1].Name}
	assert.ElementsMatch(t, []string{"Residencial Aurora", report.HeadOfficeLabel}, names)

	wide, err := e.statistics.GetDashboard(e.ctx, e.actor, "2025-02-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2249.00", wide.TotalExpenses)

	_, err = e.statistics.GetDashboard(e.ctx, e.actor, "2025-03-31", "2025-03-01")
	assert.ErrorIs(t, err, ErrValidation)
}

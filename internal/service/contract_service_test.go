package service

import (
	"testing"

	"sgo/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractLifecycle(t *testing.T) {
	e := newEnv(t)
	project := e.project(t, "Residencial Aurora")

	_, err := e.contracts.CreateContract(e.ctx, e.actor, ContractRequest{ProjectID: project.ID})
	assert.ErrorIs(t, err, ErrValidation, "number is required")

	_, err = e.contracts.CreateContract(e.ctx, e.actor, ContractRequest{ProjectID: project.ID, Number: "CT-9", Value: money("-1")})
	assert.ErrorIs(t, err, ErrValidation)

	created := e.contract(t, project.ID, "CT-01")
	assert.Equal(t, "Residencial Aurora", created.ProjectName)
	assert.Equal(t, "100000.00", created.Value)

	updated, err := e.contracts.UpdateContract(e.ctx, e.actor, created.ID, ContractRequest{Description: "Fundação e estrutura"})
	require.NoError(t, err)
	assert.Equal(t, "CT-01", updated.Number)
	assert.Equal(t, "Fundação e estrutura", updated.Description)

	list, total, err := e.contracts.ListContracts(e.ctx, e.actor, project.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	require.NoError(t, e.contracts.DeleteContract(e.ctx, e.actor, created.ID))
	_, err = e.contracts.GetContract(e.ctx, e.actor, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteContractWithInvoicesConflicts(t *testing.T) {
	e := newEnv(t)
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	invoice, err := e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{
		Number:    "001",
		IssueDate: "2025-03-05",
		Amount:    money("15000"),
	})
	require.NoError(t, err)

	err = e.contracts.DeleteContract(e.ctx, e.actor, contract.ID)
	assert.ErrorIs(t, err, ErrConflict)

	still, err := e.contracts.GetContract(e.ctx, e.actor, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "CT-01", still.Number)

	invoices, err := e.invoices.ListInvoices(e.ctx, e.actor, contract.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoice.ID, invoices[0].ID)
	assert.Equal(t, "15000.00", invoices[0].Amount)
}

func TestDeleteContractCitedByExpenseConflicts(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	_, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: fuel.ID.String(),
		ProjectID:    strp(project.ID),
		ContractID:   strp(contract.ID),
		Amount:       money("80"),
		Date:         "2025-03-10",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.contracts.DeleteContract(e.ctx, e.actor, contract.ID), ErrConflict)
	assert.ErrorIs(t, e.projects.DeleteProject(e.ctx, e.actor, project.ID), ErrConflict)
}

func TestInvoiceStatus(t *testing.T) {
	e := newEnv(t)
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	_, err := e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{Number: "001", IssueDate: "2025-03-05"})
	assert.ErrorIs(t, err, ErrValidation, "amount is required")

	_, err = e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{
		Number: "001", IssueDate: "2025-03-05", DueDate: strp("2025-03-01"), Amount: money("1"),
	})
	assert.ErrorIs(t, err, ErrValidation, "due before issue")

	inv, err := e.invoices.CreateInvoice(e.ctx, e.actor, contract.ID, InvoiceRequest{
		Number: "002", IssueDate: "2025-03-05", Amount: money("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePending, inv.Status)
	assert.Nil(t, inv.PaidAt)

	paid, err := e.invoices.UpdateInvoice(e.ctx, e.actor, inv.ID, InvoiceRequest{Status: model.InvoicePaid, PaidAt: strp("2025-04-02")})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "2025-04-02", *paid.PaidAt)

	reopened, err := e.invoices.UpdateInvoice(e.ctx, e.actor, inv.ID, InvoiceRequest{Status: model.InvoicePending})
	require.NoError(t, err)
	assert.Nil(t, reopened.PaidAt)

	_, err = e.invoices.UpdateInvoice(e.ctx, e.actor, inv.ID, InvoiceRequest{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, e.invoices.DeleteInvoice(e.ctx, e.actor, inv.ID))
	assert.ErrorIs(t, e.invoices.DeleteInvoice(e.ctx, e.actor, inv.ID), ErrNotFound)
}

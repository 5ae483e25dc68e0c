package service

import (
	"testing"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExpenseValidation(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	project := e.project(t, "Residencial Aurora")

	valid := func() CreateExpenseRequest {
		return CreateExpenseRequest{
			CostCenterID: fuel.ID.String(),
			Description:  "diesel",
			Amount:       money("250.00"),
			Date:         "2025-03-10",
		}
	}

	cases := []struct {
		name   string
		mutate func(r *CreateExpenseRequest)
		want   error
	}{
		{"missing cost center", func(r *CreateExpenseRequest) { r.CostCenterID = "" }, ErrUnprocessable},
		{"unknown cost center", func(r *CreateExpenseRequest) { r.CostCenterID = uuid.NewString() }, ErrUnprocessable},
		{"project without contract", func(r *CreateExpenseRequest) { r.ProjectID = strp(project.ID) }, ErrValidation},
		{"negative amount", func(r *CreateExpenseRequest) { r.Amount = money("-0.01") }, ErrValidation},
		{"missing amount", func(r *CreateExpenseRequest) { r.Amount = nil }, ErrValidation},
		{"missing date", func(r *CreateExpenseRequest) { r.Date = "" }, ErrValidation},
		{"bad date", func(r *CreateExpenseRequest) { r.Date = "10/03/2025" }, ErrValidation},
		{"unknown detail field", func(r *CreateExpenseRequest) { r.Details = map[string]string{"cor": "azul"} }, ErrValidation},
		{"non numeric km", func(r *CreateExpenseRequest) { r.Details = map[string]string{"kmVeiculo": "muito"} }, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			_, err := e.expenses.CreateExpense(e.ctx, e.actor, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, total, err := e.expenseRepo.List(e.ctx, repository.ExpenseFilter{CompanyID: e.actor.CompanyID})
	require.NoError(t, err)
	assert.Zero(t, total, "rejected requests must not persist anything")
}

func TestCreateExpenseOnProject(t *testing.T) {
	e := newEnv(t)
	material := e.costCenter(t, "materiais-de-construcao", "Materiais de Construção")
	project := e.project(t, "Residencial Aurora")
	contract := e.contract(t, project.ID, "CT-01")

	created, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID:  material.ID.String(),
		ProjectID:     strp(project.ID),
		ContractID:    strp(contract.ID),
		Description:   "<b>cimento</b>",
		Amount:        money("1200.5"),
		Date:          "2025-03-12",
		SupplierName:  "Casa do Construtor",
		InvoiceNumber: "NF-991",
		Details:       map[string]string{"cnpjFornecedor": "12.345.678/0001-90", "numeroNotaFiscal": ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Residencial Aurora", created.ProjectName)
	assert.Equal(t, "CT-01", created.ContractNumber)
	assert.Equal(t, "Materiais de Construção", created.CostCenterName)
	assert.Equal(t, "cimento", created.Description)
	assert.Equal(t, "1200.50", created.Amount)
	assert.Equal(t, map[string]string{"cnpjFornecedor": "12.345.678/0001-90"}, created.Details)
	assert.Equal(t, 1, created.Version)

	require.Len(t, e.notifier.events, 1)
	assert.Equal(t, ExpenseCreated, e.notifier.events[0].Type)

	logs, total, err := e.auditRepo.List(e.ctx, &e.actor.CompanyID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, model.ActionCreateExpense)

	t.Run("contract from another project", func(t *testing.T) {
		other := e.project(t, "Galpão Norte")
		_, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
			CostCenterID: material.ID.String(),
			ProjectID:    strp(other.ID),
			ContractID:   strp(contract.ID),
			Amount:       money("1"),
			Date:         "2025-03-12",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestExpenseDetailsRoundTrip(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")

	created, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: fuel.ID.String(),
		Amount:       money("250.00"),
		Date:         "2025-03-10",
		Details:      map[string]string{"placaVeiculo": "ABC-1234", "municipioUf": "Chapecó/SC", "funcionario": "  "},
	})
	require.NoError(t, err)

	got, err := e.expenses.GetExpense(e.ctx, e.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234", got.FormattedDetails)
	assert.Nil(t, got.ProjectID)
}

func TestUpdateExpense(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	created, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: fuel.ID.String(),
		Description:  "diesel",
		Amount:       money("100"),
		Date:         "2025-03-01",
	})
	require.NoError(t, err)

	t.Run("writes and bumps version", func(t *testing.T) {
		err := e.expenses.UpdateExpense(e.ctx, e.actor, created.ID, UpdateExpenseRequest{
			Description: "diesel S10",
			Amount:      money("120"),
			Version:     intp(1),
			Details:     map[string]string{"kmVeiculo": "45200"},
		})
		require.NoError(t, err)

		got, err := e.expenses.GetExpense(e.ctx, e.actor, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "diesel S10", got.Description)
		assert.Equal(t, "120.00", got.Amount)
		assert.Equal(t, "2025-03-01", got.Date)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "KM do Veículo: 45200", got.FormattedDetails)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		err := e.expenses.UpdateExpense(e.ctx, e.actor, created.ID, UpdateExpenseRequest{Description: "x", Version: intp(1)})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing expense", func(t *testing.T) {
		err := e.expenses.UpdateExpense(e.ctx, e.actor, uuid.NewString(), UpdateExpenseRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other company cannot see it", func(t *testing.T) {
		stranger := Actor{CompanyID: uuid.New()}
		err := e.expenses.UpdateExpense(e.ctx, stranger, created.ID, UpdateExpenseRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteExpense(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	created, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: fuel.ID.String(),
		Amount:       money("10"),
		Date:         "2025-03-01",
	})
	require.NoError(t, err)

	require.NoError(t, e.expenses.DeleteExpense(e.ctx, e.actor, created.ID))
	assert.ErrorIs(t, e.expenses.DeleteExpense(e.ctx, e.actor, created.ID), ErrNotFound)

	t.Run("virtual rows are protected", func(t *testing.T) {
		virtual := &model.Expense{
			CompanyID:    e.actor.CompanyID,
			CostCenterID: fuel.ID,
			Amount:       *money("99"),
			Date:         date(2025, 3, 2),
			IsVirtual:    true,
		}
		require.NoError(t, e.expenseRepo.Create(e.ctx, virtual))

		assert.ErrorIs(t, e.expenses.DeleteExpense(e.ctx, e.actor, virtual.ID.String()), ErrConflict)
		assert.ErrorIs(t, e.expenses.UpdateExpense(e.ctx, e.actor, virtual.ID.String(), UpdateExpenseRequest{}), ErrConflict)

		exists, err := e.expenseRepo.Exists(e.ctx, e.actor.CompanyID, virtual.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("automatically calculated rows are protected", func(t *testing.T) {
		computed := &model.Expense{
			CompanyID:                 e.actor.CompanyID,
			CostCenterID:              fuel.ID,
			Amount:                    *money("120"),
			Date:                      date(2025, 3, 3),
			IsAutomaticallyCalculated: true,
		}
		require.NoError(t, e.expenseRepo.Create(e.ctx, computed))

		assert.ErrorIs(t, e.expenses.DeleteExpense(e.ctx, e.actor, computed.ID.String()), ErrConflict)
		assert.ErrorIs(t, e.expenses.UpdateExpense(e.ctx, e.actor, computed.ID.String(), UpdateExpenseRequest{Amount: money("1")}), ErrConflict)

		stored, err := e.expenseRepo.FindByID(e.ctx, e.actor.CompanyID, computed.ID)
		require.NoError(t, err)
		assert.True(t, stored.Amount.Equal(*money("120")))
	})
}

func TestListExpenses(t *testing.T) {
	e := newEnv(t)
	fuel := e.costCenter(t, "combustivel", "Combustível")
	for _, d := range []string{"2025-03-03", "2025-03-01", "2025-03-02"} {
		_, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{CostCenterID: fuel.ID.String(), Amount: money("1"), Date: d})
		require.NoError(t, err)
	}

	list, total, err := e.expenses.ListExpenses(e.ctx, e.actor, ExpenseQuery{Order: "desc", Limit: 2, Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-03-03", list[0].Date)

	_, _, err = e.expenses.ListExpenses(e.ctx, e.actor, ExpenseQuery{Order: "sideways"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = e.expenses.ListExpenses(e.ctx, e.actor, ExpenseQuery{StartDate: "2025-03-05", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, ErrValidation)
}

func intp(i int) *int { return &i }

func TestFreeTextIsStoredVerbatim(t *testing.T) {
	e := newEnv(t)
	cc, err := e.costCenters.CreateCostCenter(e.ctx, e.actor, CreateCostCenterRequest{Name: "Energia & Água", Code: "energia"})
	require.NoError(t, err)
	assert.Equal(t, "Energia & Água", cc.Name)

	const description = `Tubo 3/4" PVC & conexões d'água`
	created, err := e.expenses.CreateExpense(e.ctx, e.actor, CreateExpenseRequest{
		CostCenterID: cc.ID,
		Description:  description,
		SupplierName: "M&M Materiais",
		Observations: "<b>entregar</b> até 5 < 6",
		Amount:       money("42.00"),
		Date:         "2025-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, description, created.Description)
	assert.Equal(t, "M&M Materiais", created.SupplierName)
	assert.Equal(t, "entregar até 5 < 6", created.Observations)

	// Saving the fetched values back must not change them.
	fetched, err := e.expenses.GetExpense(e.ctx, e.actor, created.ID)
	require.NoError(t, err)
	require.NoError(t, e.expenses.UpdateExpense(e.ctx, e.actor, created.ID, UpdateExpenseRequest{
		Description:  fetched.Description,
		SupplierName: fetched.SupplierName,
		Observations: fetched.Observations,
	}))
	fetched, err = e.expenses.GetExpense(e.ctx, e.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, description, fetched.Description)
	assert.Equal(t, "M&M Materiais", fetched.SupplierName)
	assert.Equal(t, "entregar até 5 < 6", fetched.Observations)

	rep, err := e.reports.GetExpenseReport(e.ctx, e.actor, ExpenseQuery{})
	require.NoError(t, err)
	require.Len(t, rep.DetailedExpenses, 1)
	assert.Equal(t, description, rep.DetailedExpenses[0].Description)
	assert.Equal(t, "M&M Materiais", rep.DetailedExpenses[0].SupplierName)
	assert.Equal(t, "Energia & Água", rep.DetailedExpenses[0].CostCenter)
	assert.Contains(t, rep.Summary.ByCostCenter, "Energia & Água")
}

package report

import (
	"testing"
	"time"

	"sgo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	fuel     = &model.CostCenter{ID: uuid.New(), Code: "combustivel", Name: "Combustível"}
	material = &model.CostCenter{ID: uuid.New(), Code: "materiais-de-construcao", Name: "Materiais de Construção"}
	aurora   = &model.Project{ID: uuid.New(), Name: "Residencial Aurora"}
)

func expense(amount string, date time.Time, cc *model.CostCenter, project *model.Project) model.Expense {
	e := model.Expense{
		ID:           uuid.New(),
		CostCenterID: cc.ID,
		CostCenter:   cc,
		Amount:       decimal.RequireFromString(amount),
		Date:         date,
	}
	if project != nil {
		e.ProjectID = &project.ID
		e.Project = project
	}
	return e
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, Filter{}, nil)

	assert.NotNil(t, r.Lines)
	assert.Empty(t, r.Lines)
	assert.Empty(t, r.Summary.ByProject)
	assert.Empty(t, r.Summary.ByCostCenter)
	assert.True(t, r.Summary.TotalExpenses.IsZero())
}

func TestBuildFuelScenario(t *testing.T) {
	e := expense("250.00", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), fuel, nil)
	e.DetailsJSON = `{"placaVeiculo":"ABC-1234","municipioUf":"Chapecó/SC"}`

	r := Build([]model.Expense{e}, Filter{}, nil)

	require.Len(t, r.Lines, 1)
	line := r.Lines[0]
	assert.Equal(t, "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234", line.FormattedDetails)
	assert.Equal(t, HeadOfficeLabel, line.Project)
	assert.True(t, line.Amount.Equal(decimal.RequireFromString("250")))
	assert.True(t, r.Summary.ByCostCenter["Combustível"].Equal(decimal.RequireFromString("250.00")))
	assert.True(t, r.Summary.ByProject[HeadOfficeLabel].Equal(decimal.RequireFromString("250.00")))
}

func TestBuildTotalsAgree(t *testing.T) {
	march := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	expenses := []model.Expense{
		expense("100.10", march(5), fuel, aurora),
		expense("0.05", march(1), material, aurora),
		expense("999.99", march(20), material, nil),
		expense("12.34", march(2), fuel, nil),
	}

	r := Build(expenses, Filter{}, nil)

	sum := func(m map[string]decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, v := range m {
			total = total.Add(v)
		}
		return total
	}
	assert.True(t, r.Summary.TotalExpenses.Equal(decimal.RequireFromString("1112.48")))
	assert.True(t, r.Summary.TotalExpenses.Equal(sum(r.Summary.ByCostCenter)))
	assert.True(t, sum(r.Summary.ByCostCenter).Equal(sum(r.Summary.ByProject)))
	assert.Equal(t, []string{"Combustível", "Materiais de Construção"}, SortedKeys(r.Summary.ByCostCenter))

	t.Run("ascending by default", func(t *testing.T) {
		for i := 1; i < len(r.Lines); i++ {
			assert.False(t, r.Lines[i].Date.Before(r.Lines[i-1].Date))
		}
	})

	t.Run("descending on request", func(t *testing.T) {
		desc := Build(expenses, Filter{Descending: true}, nil)
		assert.Equal(t, march(20), desc.Lines[0].Date)
	})
}

func TestBuildMalformedDetails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := expense("10", time.Now(), fuel, nil)
	e.DetailsJSON = `{not json`

	r := Build([]model.Expense{e}, Filter{}, zap.New(core))

	require.Len(t, r.Lines, 1)
	assert.Empty(t, r.Lines[0].FormattedDetails)
	assert.True(t, r.Summary.TotalExpenses.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, logs.FilterMessage("unreadable expense details").Len())
}

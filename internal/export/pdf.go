package export

import (
	"fmt"

	"sgo/internal/report"
	"sgo/pkg/format"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	cellText   = props.Text{Size: 7}
	cellAmount = props.Text{Size: 7, Align: align.Right}
	headText   = props.Text{Size: 7, Style: fontstyle.Bold}
	headAmount = props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right}
)

// PDF renders the detail table followed by the summary table.
func PDF(r *report.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Relatório de Despesas", props.Text{Size: 16, Style: fontstyle.Bold}),
	)
	m.AddRow(8,
		text.NewCol(8, period(r.Filter), props.Text{Size: 9}),
		text.NewCol(4, "Gerado em "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right}),
	)

	m.AddRow(8,
		text.NewCol(1, "Data", headText),
		text.NewCol(2, "Obra", headText),
		text.NewCol(2, "Centro de Custo", headText),
		text.NewCol(2, "Descrição", headText),
		text.NewCol(3, "Detalhes", headText),
		text.NewCol(2, "Valor", headAmount),
	)
	for _, line := range r.Lines {
		m.AddRow(8,
			text.NewCol(1, format.Date(line.Date), cellText),
			text.NewCol(2, line.Project, cellText),
			text.NewCol(2, line.CostCenter, cellText),
			text.NewCol(2, line.Description, cellText),
			text.NewCol(3, line.FormattedDetails, cellText),
			text.NewCol(2, format.BRL(line.Amount), cellAmount),
		)
	}

	m.AddRow(10, col.New(12))
	m.AddRow(8, text.NewCol(12, "Resumo por Centro de Custo", props.Text{Size: 10, Style: fontstyle.Bold}))
	for _, name := range report.SortedKeys(r.Summary.ByCostCenter) {
		m.AddRow(6,
			text.NewCol(8, name, cellText),
			text.NewCol(4, format.BRL(r.Summary.ByCostCenter[name]), cellAmount),
		)
	}
	m.AddRow(8, text.NewCol(12, "Resumo por Obra", props.Text{Size: 10, Style: fontstyle.Bold, Top: 2}))
	for _, name := range report.SortedKeys(r.Summary.ByProject) {
		m.AddRow(6,
			text.NewCol(8, name, cellText),
			text.NewCol(4, format.BRL(r.Summary.ByProject[name]), cellAmount),
		)
	}
	m.AddRow(10,
		text.NewCol(8, "Total Geral", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}),
		text.NewCol(4, format.BRL(r.Summary.TotalExpenses), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func period(f report.Filter) string {
	switch {
	case f.StartDate != nil && f.EndDate != nil:
		return fmt.Sprintf("Período: %s a %s", format.Date(*f.StartDate), format.Date(*f.EndDate))
	case f.StartDate != nil:
		return "A partir de " + format.Date(*f.StartDate)
	case f.EndDate != nil:
		return "Até " + format.Date(*f.EndDate)
	}
	return "Todos os períodos"
}

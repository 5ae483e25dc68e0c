package export

import (
	"sgo/internal/report"

	"github.com/gosimple/slug"
)

// Filename builds a download name such as "relatorio-despesas-2025-03-01-a-2025-03-31.xlsx".
func Filename(f report.Filter, ext string) string {
	name := "relatorio despesas"
	if f.StartDate != nil {
		name += " " + f.StartDate.Format("2006-01-02")
	}
	if f.EndDate != nil {
		name += " a " + f.EndDate.Format("2006-01-02")
	}
	return slug.Make(name) + "." + ext
}

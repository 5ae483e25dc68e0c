package service

import (
	"context"
	"fmt"
	"time"

	"sgo/internal/export"
	"sgo/internal/logger"
	"sgo/internal/metrics"
	"sgo/internal/report"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportFilterResponse struct {
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	ProjectIDs     []string `json:"project_ids"`
	CostCenterID   *string  `json:"cost_center_id"`
	HeadOfficeOnly bool     `json:"head_office_only"`
	Order          string   `json:"order"`
}

type ReportLineResponse struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	Project          string `json:"project"`
	CostCenter       string `json:"cost_center"`
	Description      string `json:"description"`
	SupplierName     string `json:"supplier_name"`
	InvoiceNumber    string `json:"invoice_number"`
	Observations     string `json:"observations"`
	Amount           string `json:"amount"`
	FormattedDetails string `json:"formatted_details"`
}

type ReportSummaryResponse struct {
	ByProject     map[string]string `json:"by_project"`
	ByCostCenter  map[string]string `json:"by_cost_center"`
	TotalExpenses string            `json:"total_expenses"`
}

type ExpenseReportResponse struct {
	Filter           ReportFilterResponse  `json:"filter"`
	DetailedExpenses []ReportLineResponse  `json:"detailed_expenses"`
	Summary          ReportSummaryResponse `json:"summary"`
	GeneratedAt      string                `json:"generated_at"`
}

// ReportFile is a rendered export ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ReportService interface {
	BuildExpenseReport(ctx context.Context, actor Actor, query ExpenseQuery) (*report.Report, error)
	GetExpenseReport(ctx context.Context, actor Actor, query ExpenseQuery) (*ExpenseReportResponse, error)
	ExportExpenseReportExcel(ctx context.Context, actor Actor, query ExpenseQuery) (*ReportFile, error)
	ExportExpenseReportPDF(ctx context.Context, actor Actor, query ExpenseQuery) (*ReportFile, error)
}

type reportService struct {
	expenseRepo repository.ExpenseRepository
	metrics     *metrics.Metrics
}

func NewReportService(expenseRepo repository.ExpenseRepository, m *metrics.Metrics) ReportService {
	return &reportService{expenseRepo: expenseRepo, metrics: m}
}

// BuildExpenseReport loads every matching expense (no pagination) and aggregates it.
func (s *reportService) BuildExpenseReport(ctx context.Context, actor Actor, query ExpenseQuery) (*report.Report, error) {
	filter, err := buildExpenseFilter(actor, query)
	if err != nil {
		return nil, err
	}

	expenses, _, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses for report: %w", err)
	}

	return report.Build(expenses, report.Filter{
		StartDate:      filter.StartDate,
		EndDate:        filter.EndDate,
		ProjectIDs:     filter.ProjectIDs,
		CostCenterID:   filter.CostCenterID,
		HeadOfficeOnly: filter.HeadOfficeOnly,
		Descending:     filter.Descending,
	}, logger.FromContext(ctx)), nil
}

func (s *reportService) GetExpenseReport(ctx context.Context, actor Actor, query ExpenseQuery) (*ExpenseReportResponse, error) {
	r, err := s.BuildExpenseReport(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportGenerated("json")
	return toReportResponse(r), nil
}

func (s *reportService) ExportExpenseReportExcel(ctx context.Context, actor Actor, query ExpenseQuery) (*ReportFile, error) {
	r, err := s.BuildExpenseReport(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	data, err := export.Excel(r)
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	s.metrics.ReportGenerated("xlsx")
	return &ReportFile{Filename: export.Filename(r.Filter, "xlsx"), ContentType: export.ContentTypeExcel, Data: data}, nil
}

func (s *reportService) ExportExpenseReportPDF(ctx context.Context, actor Actor, query ExpenseQuery) (*ReportFile, error) {
	r, err := s.BuildExpenseReport(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	data, err := export.PDF(r)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	s.metrics.ReportGenerated("pdf")
	return &ReportFile{Filename: export.Filename(r.Filter, "pdf"), ContentType: export.ContentTypePDF, Data: data}, nil
}

func toReportResponse(r *report.Report) *ExpenseReportResponse {
	res := &ExpenseReportResponse{
		Filter: ReportFilterResponse{
			StartDate:      formatDate(r.Filter.StartDate),
			EndDate:        formatDate(r.Filter.EndDate),
			ProjectIDs:     make([]string, 0, len(r.Filter.ProjectIDs)),
			CostCenterID:   idString(r.Filter.CostCenterID),
			HeadOfficeOnly: r.Filter.HeadOfficeOnly,
			Order:          "asc",
		},
		DetailedExpenses: make([]ReportLineResponse, 0, len(r.Lines)),
		Summary: ReportSummaryResponse{
			ByProject:     moneyMap(r.Summary.ByProject),
			ByCostCenter:  moneyMap(r.Summary.ByCostCenter),
			TotalExpenses: r.Summary.TotalExpenses.StringFixed(2),
		},
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
	}
	if r.Filter.Descending {
		res.Filter.Order = "desc"
	}
	for _, id := range r.Filter.ProjectIDs {
		res.Filter.ProjectIDs = append(res.Filter.ProjectIDs, id.String())
	}
	for _, l := range r.Lines {
		res.DetailedExpenses = append(res.DetailedExpenses, ReportLineResponse{
			ID:               l.ID.String(),
			Date:             l.Date.Format(dateLayout),
			Project:          l.Project,
			CostCenter:       l.CostCenter,
			Description:      l.Description,
			SupplierName:     l.SupplierName,
			InvoiceNumber:    l.InvoiceNumber,
			Observations:     l.Observations,
			Amount:           l.Amount.StringFixed(2),
			FormattedDetails: l.FormattedDetails,
		})
	}
	return res
}

func moneyMap(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.StringFixed(2)
	}
	return out
}

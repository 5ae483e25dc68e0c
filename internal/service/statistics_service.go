package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sgo/internal/model"
	"sgo/internal/report"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
)

type GroupTotalResponse struct {
	Name  string `json:"name"`
	Total string `json:"total"`
	Count int64  `json:"count"`
}

type DashboardResponse struct {
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	TotalExpenses   string               `json:"total_expenses"`
	ExpenseCount    int64                `json:"expense_count"`
	ByCostCenter    []GroupTotalResponse `json:"by_cost_center"`
	ByProject       []GroupTotalResponse `json:"by_project"`
	ActiveProjects  int64                `json:"active_projects"`
	InvoicedPending string               `json:"invoiced_pending"`
	InvoicedPaid    string               `json:"invoiced_paid"`
}

type StatisticsService interface {
	// GetDashboard defaults to the current month when a bound is empty.
	GetDashboard(ctx context.Context, actor Actor, startDate, endDate string) (*DashboardResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
	now  func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo, now: time.Now}
}

func (s *statisticsService) GetDashboard(ctx context.Context, actor Actor, startDate, endDate string) (*DashboardResponse, error) {
	today := dateOnly(s.now())
	rng := repository.StatisticsRange{
		CompanyID: actor.CompanyID,
		StartDate: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		EndDate:   today,
	}
	var err error
	if strings.TrimSpace(startDate) != "" {
		if rng.StartDate, err = parseDate(startDate, "start_date"); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(endDate) != "" {
		if rng.EndDate, err = parseDate(endDate, "end_date"); err != nil {
			return nil, err
		}
	}
	if rng.EndDate.Before(rng.StartDate) {
		return nil, validationError("end_date must not be before start_date")
	}

	byCostCenter, err := s.repo.ExpensesByCostCenter(ctx, rng)
	if err != nil {
		return nil, err
	}
	byProject, err := s.repo.ExpensesByProject(ctx, rng)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountProjectsByStatus(ctx, actor.CompanyID, model.ProjectActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active projects: %w", err)
	}
	invoices, err := s.repo.InvoiceTotals(ctx, rng)
	if err != nil {
		return nil, err
	}

	res := &DashboardResponse{
		StartDate:       rng.StartDate.Format(dateLayout),
		EndDate:         rng.EndDate.Format(dateLayout),
		ByCostCenter:    make([]GroupTotalResponse, 0, len(byCostCenter)),
		ByProject:       make([]GroupTotalResponse, 0, len(byProject)),
		ActiveProjects:  active,
		InvoicedPending: "0.00",
		InvoicedPaid:    "0.00",
	}

	total := decimal.Zero
	for _, row := range byCostCenter {
		total = total.Add(row.Total)
		res.ExpenseCount += row.Count
		res.ByCostCenter = append(res.ByCostCenter, toGroupTotal(row.Name, row))
	}
	res.TotalExpenses = total.Round(2).StringFixed(2)
	for _, row := range byProject {
		name := row.Name
		if name == "" {
			name = report.HeadOfficeLabel
		}
		res.ByProject = append(res.ByProject, toGroupTotal(name, row))
	}
	for _, row := range invoices {
		switch row.Status {
		case model.InvoicePending:
			res.InvoicedPending = row.Total.Round(2).StringFixed(2)
		case model.InvoicePaid:
			res.InvoicedPaid = row.Total.Round(2).StringFixed(2)
		}
	}
	return res, nil
}

func toGroupTotal(name string, row model.AmountByGroup) GroupTotalResponse {
	return GroupTotalResponse{Name: name, Total: row.Total.Round(2).StringFixed(2), Count: row.Count}
}

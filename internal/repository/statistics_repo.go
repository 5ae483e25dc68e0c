package repository

import (
	"context"
	"fmt"
	"time"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatisticsRange bounds dashboard aggregates. EndDate is an inclusive day.
type StatisticsRange struct {
	CompanyID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type StatisticsRepository interface {
	ExpensesByCostCenter(ctx context.Context, rng StatisticsRange) ([]model.AmountByGroup, error)
	// ExpensesByProject reports head-office expenses under an empty name.
	ExpensesByProject(ctx context.Context, rng StatisticsRange) ([]model.AmountByGroup, error)
	CountProjectsByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error)
	InvoiceTotals(ctx context.Context, rng StatisticsRange) ([]model.InvoiceTotals, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) expenses(ctx context.Context, rng StatisticsRange) *gorm.DB {
	return GetDB(ctx, r.db).Table("expenses").
		Where("expenses.company_id = ? AND expenses.expense_date >= ? AND expenses.expense_date < ?",
			rng.CompanyID, rng.StartDate, rng.EndDate.AddDate(0, 0, 1))
}

func (r *statisticsRepository) ExpensesByCostCenter(ctx context.Context, rng StatisticsRange) ([]model.AmountByGroup, error) {
	var rows []model.AmountByGroup
	if err := r.expenses(ctx, rng).
		Select("cost_centers.name as name, COALESCE(SUM(expenses.amount), 0) as total, COUNT(expenses.id) as count").
		Joins("JOIN cost_centers ON cost_centers.id = expenses.cost_center_id").
		Group("cost_centers.name").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum expenses by cost center: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) ExpensesByProject(ctx context.Context, rng StatisticsRange) ([]model.AmountByGroup, error) {
	var rows []model.AmountByGroup
	if err := r.expenses(ctx, rng).
		Select("COALESCE(projects.name, '') as name, COALESCE(SUM(expenses.amount), 0) as total, COUNT(expenses.id) as count").
		Joins("LEFT JOIN projects ON projects.id = expenses.project_id").
		Group("projects.name").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum expenses by project: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) CountProjectsByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Project{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) InvoiceTotals(ctx context.Context, rng StatisticsRange) ([]model.InvoiceTotals, error) {
	var rows []model.InvoiceTotals
	if err := GetDB(ctx, r.db).Table("contract_invoices").
		Select("contract_invoices.status as status, COALESCE(SUM(contract_invoices.amount), 0) as total, COUNT(contract_invoices.id) as count").
		Joins("JOIN contracts ON contracts.id = contract_invoices.contract_id").
		Where("contracts.company_id = ? AND contract_invoices.issue_date >= ? AND contract_invoices.issue_date < ?",
			rng.CompanyID, rng.StartDate, rng.EndDate.AddDate(0, 0, 1)).
		Group("contract_invoices.status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum invoices: %w", err)
	}
	return rows, nil
}

package repository

import (
	"context"
	"time"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseFilter narrows ListExpenses. Zero values mean "no restriction"; an empty
// ProjectIDs does not exclude anything.
type ExpenseFilter struct {
	CompanyID      uuid.UUID
	ProjectIDs     []uuid.UUID
	ContractID     *uuid.UUID
	CostCenterID   *uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time // inclusive day
	HeadOfficeOnly bool
	Descending     bool
	Limit          int
	Offset         int
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
	// UpdateVersioned writes the editable columns only when the stored version still
	// equals expectedVersion, and bumps it. It reports whether a row was written.
	UpdateVersioned(ctx context.Context, expense *model.Expense, expectedVersion int) (bool, error)
	Exists(ctx context.Context, companyID, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Omit("Project", "Contract", "CostCenter").Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	err := r.withRelations(GetDB(ctx, r.db)).
		First(&expense, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Expense{}).Where("company_id = ?", filter.CompanyID)
	if len(filter.ProjectIDs) > 0 {
		q = q.Where("project_id IN ?", filter.ProjectIDs)
	}
	if filter.HeadOfficeOnly {
		q = q.Where("project_id IS NULL")
	}
	if filter.ContractID != nil {
		q = q.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.CostCenterID != nil {
		q = q.Where("cost_center_id = ?", *filter.CostCenterID)
	}
	if filter.StartDate != nil {
		q = q.Where("expense_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("expense_date < ?", filter.EndDate.AddDate(0, 0, 1))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "expense_date asc, created_at asc"
	if filter.Descending {
		order = "expense_date desc, created_at desc"
	}
	find := r.withRelations(q).Order(order)
	if filter.Limit > 0 {
		find = find.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := find.Find(&expenses).Error; err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *expenseRepository) UpdateVersioned(ctx context.Context, expense *model.Expense, expectedVersion int) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Expense{}).
		Where("id = ? AND company_id = ? AND version = ?", expense.ID, expense.CompanyID, expectedVersion).
		Updates(map[string]interface{}{
			"description":     expense.Description,
			"amount":          expense.Amount,
			"expense_date":    expense.Date,
			"observations":    expense.Observations,
			"supplier_name":   expense.SupplierName,
			"invoice_number":  expense.InvoiceNumber,
			"attachment_path": expense.AttachmentPath,
			"details_json":    expense.DetailsJSON,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *expenseRepository) Exists(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Expense{}).
		Where("id = ? AND company_id = ?", id, companyID).Count(&count).Error
	return count > 0, err
}

func (r *expenseRepository) Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.Expense{}, "id = ? AND company_id = ?", id, companyID)
	return res.RowsAffected, res.Error
}

func (r *expenseRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("CostCenter").Preload("Project").Preload("Contract")
}

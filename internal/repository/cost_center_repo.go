package repository

import (
	"context"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostCenterRepository interface {
	Create(ctx context.Context, cc *model.CostCenter) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CostCenter, error)
	// ListVisible returns the global catalog plus the company's own entries, by name.
	ListVisible(ctx context.Context, companyID *uuid.UUID) ([]model.CostCenter, error)
	// NameTaken checks the scope (global when companyID is nil) for a name, case-insensitively.
	NameTaken(ctx context.Context, companyID *uuid.UUID, name string) (bool, error)
	FindGlobalByCode(ctx context.Context, code string) (*model.CostCenter, error)
	CountExpenses(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type costCenterRepository struct {
	db *gorm.DB
}

func NewCostCenterRepository(db *gorm.DB) CostCenterRepository {
	return &costCenterRepository{db: db}
}

func (r *costCenterRepository) Create(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Create(cc).Error
}

func (r *costCenterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).First(&cc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *costCenterRepository) ListVisible(ctx context.Context, companyID *uuid.UUID) ([]model.CostCenter, error) {
	var list []model.CostCenter
	q := GetDB(ctx, r.db).Where("company_id IS NULL")
	if companyID != nil {
		q = GetDB(ctx, r.db).Where("company_id IS NULL OR company_id = ?", *companyID)
	}
	if err := q.Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *costCenterRepository) NameTaken(ctx context.Context, companyID *uuid.UUID, name string) (bool, error) {
	var count int64
	q := GetDB(ctx, r.db).Model(&model.CostCenter{}).Where("LOWER(name) = LOWER(?)", name)
	if companyID == nil {
		q = q.Where("company_id IS NULL")
	} else {
		q = q.Where("company_id IS NULL OR company_id = ?", *companyID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *costCenterRepository) FindGlobalByCode(ctx context.Context, code string) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).Where("company_id IS NULL AND code = ?", code).First(&cc).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *costCenterRepository) CountExpenses(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Expense{}).Where("cost_center_id = ?", id).Count(&count).Error
	return count, err
}

func (r *costCenterRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.CostCenter{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

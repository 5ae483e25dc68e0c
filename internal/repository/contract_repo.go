package repository

import (
	"context"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, companyID uuid.UUID, projectID *uuid.UUID, page, limit int) ([]model.Contract, int64, error)
	Update(ctx context.Context, contract *model.Contract) error
	CountInvoices(ctx context.Context, id uuid.UUID) (int64, error)
	CountExpenses(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error)
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Create(contract).Error
}

func (r *contractRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := GetDB(ctx, r.db).Preload("Project").
		First(&contract, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) List(ctx context.Context, companyID uuid.UUID, projectID *uuid.UUID, page, limit int) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Contract{}).Where("company_id = ?", companyID)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	if err := q.Preload("Project").Order("number asc").Offset(offset).Limit(size).Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Omit("Project").Save(contract).Error
}

func (r *contractRepository) CountInvoices(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ContractInvoice{}).Where("contract_id = ?", id).Count(&count).Error
	return count, err
}

func (r *contractRepository) CountExpenses(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Expense{}).Where("contract_id = ?", id).Count(&count).Error
	return count, err
}

func (r *contractRepository) Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.Contract{}, "id = ? AND company_id = ?", id, companyID)
	return res.RowsAffected, res.Error
}

package repository

import (
	"context"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceRepository stores contract invoices. Company scoping goes through the owning contract.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.ContractInvoice) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.ContractInvoice, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractInvoice, error)
	Update(ctx context.Context, invoice *model.ContractInvoice) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.ContractInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.ContractInvoice, error) {
	var invoice model.ContractInvoice
	err := GetDB(ctx, r.db).
		Joins("JOIN contracts ON contracts.id = contract_invoices.contract_id").
		Where("contract_invoices.id = ? AND contracts.company_id = ?", id, companyID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.ContractInvoice, error) {
	var invoices []model.ContractInvoice
	err := GetDB(ctx, r.db).Where("contract_id = ?", contractID).
		Order("issue_date asc, number asc").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.ContractInvoice) error {
	return GetDB(ctx, r.db).Omit("Contract").Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.ContractInvoice{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
)

type InvoiceRequest struct {
	Number    string           `json:"number"`
	IssueDate string           `json:"issue_date"`
	DueDate   *string          `json:"due_date"`
	Amount    *decimal.Decimal `json:"amount"`
	Status    string           `json:"status"`
	PaidAt    *string          `json:"paid_at"`
}

type InvoiceResponse struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contract_id"`
	Number     string  `json:"number"`
	IssueDate  string  `json:"issue_date"`
	DueDate    *string `json:"due_date"`
	Amount     string  `json:"amount"`
	Status     string  `json:"status"`
	PaidAt     *string `json:"paid_at"`
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, actor Actor, contractID string, req InvoiceRequest) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, actor Actor, contractID string) ([]InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, actor Actor, id string, req InvoiceRequest) (*InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, actor Actor, id string) error
}

type invoiceService struct {
	repo         repository.InvoiceRepository
	contractRepo repository.ContractRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewInvoiceService(repo repository.InvoiceRepository, contractRepo repository.ContractRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) InvoiceService {
	return &invoiceService{repo: repo, contractRepo: contractRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, actor Actor, contractID string, req InvoiceRequest) (*InvoiceResponse, error) {
	contract, err := s.contract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}

	invoice := &model.ContractInvoice{ContractID: contract.ID, Status: model.InvoicePending}
	if req.Amount == nil {
		return nil, validationError("amount is required")
	}
	if strings.TrimSpace(req.IssueDate) == "" {
		return nil, validationError("issue_date is required")
	}
	if err := applyInvoiceRequest(invoice, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, invoice); err != nil {
			return translateDBError(err, "invoice")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateInvoice, invoice.ID.String(), invoice.Number,
			map[string]interface{}{"contract": contract.Number, "amount": invoice.Amount.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, actor Actor, contractID string) ([]InvoiceResponse, error) {
	contract, err := s.contract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.repo.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, *toInvoiceResponse(&invoices[i]))
	}
	return res, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, actor Actor, id string, req InvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyInvoiceRequest(invoice, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, invoice); err != nil {
			return translateDBError(err, "invoice")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateInvoice, invoice.ID.String(), invoice.Number,
			map[string]interface{}{"status": invoice.Status, "amount": invoice.Amount.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, actor Actor, id string) error {
	invoice, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, invoice.ID)
		if err != nil {
			return translateDBError(err, "invoice")
		}
		if rows == 0 {
			return notFoundError("invoice")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteInvoice, invoice.ID.String(), invoice.Number, nil)
	})
}

func (s *invoiceService) contract(ctx context.Context, actor Actor, rawID string) (*model.Contract, error) {
	id, err := parseID(rawID, "contract id")
	if err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "contract")
	}
	return contract, nil
}

func (s *invoiceService) load(ctx context.Context, actor Actor, rawID string) (*model.ContractInvoice, error) {
	id, err := parseID(rawID, "invoice id")
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "invoice")
	}
	return invoice, nil
}

func applyInvoiceRequest(inv *model.ContractInvoice, req InvoiceRequest) error {
	if number := strings.TrimSpace(req.Number); number != "" {
		inv.Number = number
	}
	if inv.Number == "" {
		return validationError("number is required")
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return validationError("amount must be greater than or equal to 0")
		}
		inv.Amount = req.Amount.Round(2)
	}
	if strings.TrimSpace(req.IssueDate) != "" {
		issued, err := parseDate(req.IssueDate, "issue_date")
		if err != nil {
			return err
		}
		inv.IssueDate = issued
	}

	var err error
	if req.DueDate != nil {
		if inv.DueDate, err = parseOptionalDate(req.DueDate, "due_date"); err != nil {
			return err
		}
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
		return validationError("due_date must not be before issue_date")
	}
	if req.PaidAt != nil {
		if inv.PaidAt, err = parseOptionalDate(req.PaidAt, "paid_at"); err != nil {
			return err
		}
	}

	if req.Status != "" {
		if !model.ValidInvoiceStatus(req.Status) {
			return validationError("status must be pending, paid or cancelled")
		}
		inv.Status = req.Status
	}
	switch inv.Status {
	case model.InvoicePaid:
		if inv.PaidAt == nil {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			inv.PaidAt = &today
		}
	default:
		inv.PaidAt = nil
	}
	return nil
}

func toInvoiceResponse(inv *model.ContractInvoice) *InvoiceResponse {
	issued := inv.IssueDate.Format(dateLayout)
	return &InvoiceResponse{
		ID:         inv.ID.String(),
		ContractID: inv.ContractID.String(),
		Number:     inv.Number,
		IssueDate:  issued,
		DueDate:    formatDate(inv.DueDate),
		Amount:     inv.Amount.StringFixed(2),
		Status:     inv.Status,
		PaidAt:     formatDate(inv.PaidAt),
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sgo/internal/fieldschema"
	"sgo/internal/metrics"
	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	CostCenterID   string            `json:"cost_center_id"`
	ProjectID      *string           `json:"project_id"`
	ContractID     *string           `json:"contract_id"`
	Description    string            `json:"description"`
	Amount         *decimal.Decimal  `json:"amount"`
	Date           string            `json:"date"` // YYYY-MM-DD
	Observations   string            `json:"observations"`
	SupplierName   string            `json:"supplier_name"`
	InvoiceNumber  string            `json:"invoice_number"`
	AttachmentPath string            `json:"attachment_path"`
	Details        map[string]string `json:"details"`
}

// UpdateExpenseRequest replaces the editable fields. A nil Amount, empty Date or nil
// Details keeps the stored value. Version, when sent, must match the stored row.
type UpdateExpenseRequest struct {
	Description    string            `json:"description"`
	Amount         *decimal.Decimal  `json:"amount"`
	Date           string            `json:"date"`
	Observations   string            `json:"observations"`
	SupplierName   string            `json:"supplier_name"`
	InvoiceNumber  string            `json:"invoice_number"`
	AttachmentPath string            `json:"attachment_path"`
	Details        map[string]string `json:"details"`
	Version        *int              `json:"version"`
}

// ExpenseQuery carries raw filter values from the query string.
type ExpenseQuery struct {
	ProjectIDs     []string
	ContractID     string
	CostCenterID   string
	StartDate      string
	EndDate        string
	HeadOfficeOnly bool
	Order          string // asc or desc
	Page           int
	Limit          int
}

type ExpenseResponse struct {
	ID                        string            `json:"id"`
	CompanyID                 string            `json:"company_id"`
	ProjectID                 *string           `json:"project_id"`
	ProjectName               string            `json:"project_name,omitempty"`
	ContractID                *string           `json:"contract_id"`
	ContractNumber            string            `json:"contract_number,omitempty"`
	CostCenterID              string            `json:"cost_center_id"`
	CostCenterCode            string            `json:"cost_center_code,omitempty"`
	CostCenterName            string            `json:"cost_center_name,omitempty"`
	Description               string            `json:"description"`
	Amount                    string            `json:"amount"`
	Date                      string            `json:"date"`
	Observations              string            `json:"observations"`
	SupplierName              string            `json:"supplier_name"`
	InvoiceNumber             string            `json:"invoice_number"`
	AttachmentPath            string            `json:"attachment_path"`
	Details                   map[string]string `json:"details,omitempty"`
	FormattedDetails          string            `json:"formatted_details,omitempty"`
	IsVirtual                 bool              `json:"is_virtual"`
	IsAutomaticallyCalculated bool              `json:"is_automatically_calculated"`
	Version                   int               `json:"version"`
	CreatedAt                 string            `json:"created_at"`
	UpdatedAt                 string            `json:"updated_at"`
}

const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is pushed to live dashboards of the same company.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	CompanyID string    `json:"company_id"`
	ExpenseID string    `json:"expense_id"`
	Amount    string    `json:"amount,omitempty"`
	At        time.Time `json:"at"`
}

// ExpenseNotifier receives expense changes after they are committed. Delivery is best effort.
type ExpenseNotifier interface {
	NotifyExpense(event ExpenseEvent)
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, actor Actor, req CreateExpenseRequest) (*ExpenseResponse, error)
	UpdateExpense(ctx context.Context, actor Actor, id string, req UpdateExpenseRequest) error
	DeleteExpense(ctx context.Context, actor Actor, id string) error
	GetExpense(ctx context.Context, actor Actor, id string) (*ExpenseResponse, error)
	ListExpenses(ctx context.Context, actor Actor, query ExpenseQuery) ([]ExpenseResponse, int64, error)
}

type expenseService struct {
	expenseRepo    repository.ExpenseRepository
	costCenterRepo repository.CostCenterRepository
	projectRepo    repository.ProjectRepository
	contractRepo   repository.ContractRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	metrics        *metrics.Metrics
	notifier       ExpenseNotifier
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	costCenterRepo repository.CostCenterRepository,
	projectRepo repository.ProjectRepository,
	contractRepo repository.ContractRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	m *metrics.Metrics,
	notifier ExpenseNotifier,
) ExpenseService {
	return &expenseService{
		expenseRepo:    expenseRepo,
		costCenterRepo: costCenterRepo,
		projectRepo:    projectRepo,
		contractRepo:   contractRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		metrics:        m,
		notifier:       notifier,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, actor Actor, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if strings.TrimSpace(req.CostCenterID) == "" {
		return nil, unprocessableError("cost_center_id is required")
	}
	costCenterID, err := uuid.Parse(strings.TrimSpace(req.CostCenterID))
	if err != nil {
		return nil, unprocessableError("invalid cost_center_id")
	}

	projectID, err := parseOptionalID(req.ProjectID, "project_id")
	if err != nil {
		return nil, err
	}
	contractID, err := parseOptionalID(req.ContractID, "contract_id")
	if err != nil {
		return nil, err
	}
	if projectID != nil && contractID == nil {
		return nil, validationError("contract_id is required when project_id is set")
	}

	amount, err := validateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, validationError("date is required")
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}

	cc, err := s.costCenterRepo.GetByID(ctx, costCenterID)
	if err != nil && !isRecordNotFound(err) {
		return nil, fmt.Errorf("failed to load cost center: %w", err)
	}
	if err != nil || !costCenterVisibleTo(cc, actor.CompanyID) {
		return nil, unprocessableError("cost center not found")
	}

	if err := s.checkProjectAndContract(ctx, actor.CompanyID, projectID, contractID); err != nil {
		return nil, err
	}

	detailsJSON, err := encodeExpenseDetails(cc.Code, req.Details)
	if err != nil {
		return nil, err
	}

	expense := &model.Expense{
		CompanyID:      actor.CompanyID,
		ProjectID:      projectID,
		ContractID:     contractID,
		CostCenterID:   cc.ID,
		Description:    sanitizeText(req.Description),
		Amount:         amount,
		Date:           date,
		Observations:   sanitizeText(req.Observations),
		SupplierName:   sanitizeText(req.SupplierName),
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		AttachmentPath: strings.TrimSpace(req.AttachmentPath),
		DetailsJSON:    detailsJSON,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.expenseRepo.Create(txCtx, expense); err != nil {
			return translateDBError(err, "expense")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateExpense, expense.ID.String(), expense.Description,
			map[string]interface{}{
				"cost_center": cc.Code,
				"amount":      amount.StringFixed(2),
				"date":        req.Date,
			})
	})
	s.metrics.ExpenseWrite("create", err)
	if err != nil {
		return nil, err
	}

	stored, err := s.expenseRepo.FindByID(ctx, actor.CompanyID, expense.ID)
	if err != nil {
		return nil, translateDBError(err, "expense")
	}
	s.notify(ExpenseCreated, stored)
	return toExpenseResponse(stored), nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, actor Actor, id string, req UpdateExpenseRequest) error {
	expenseID, err := parseID(id, "expense id")
	if err != nil {
		return err
	}
	expense, err := s.expenseRepo.FindByID(ctx, actor.CompanyID, expenseID)
	if err != nil {
		return translateDBError(err, "expense")
	}
	if expense.IsVirtual {
		return conflictError("virtual expenses cannot be edited")
	}
	if expense.IsAutomaticallyCalculated {
		return conflictError("automatically calculated expenses cannot be edited")
	}

	expected := expense.Version
	if req.Version != nil {
		if *req.Version != expense.Version {
			return conflictError("expense was modified by another request")
		}
		expected = *req.Version
	}

	if req.Amount != nil {
		amount, err := validateAmount(req.Amount)
		if err != nil {
			return err
		}
		expense.Amount = amount
	}
	if strings.TrimSpace(req.Date) != "" {
		date, err := parseDate(req.Date, "date")
		if err != nil {
			return err
		}
		expense.Date = date
	}
	if req.Details != nil {
		code := ""
		if expense.CostCenter != nil {
			code = expense.CostCenter.Code
		}
		detailsJSON, err := encodeExpenseDetails(code, req.Details)
		if err != nil {
			return err
		}
		expense.DetailsJSON = detailsJSON
	}
	expense.Description = sanitizeText(req.Description)
	expense.Observations = sanitizeText(req.Observations)
	expense.SupplierName = sanitizeText(req.SupplierName)
	expense.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	expense.AttachmentPath = strings.TrimSpace(req.AttachmentPath)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		written, err := s.expenseRepo.UpdateVersioned(txCtx, expense, expected)
		if err != nil {
			return translateDBError(err, "expense")
		}
		if !written {
			exists, err := s.expenseRepo.Exists(txCtx, actor.CompanyID, expense.ID)
			if err != nil {
				return fmt.Errorf("failed to re-check expense: %w", err)
			}
			if !exists {
				return notFoundError("expense")
			}
			return conflictError("expense was modified by another request")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateExpense, expense.ID.String(), expense.Description,
			map[string]interface{}{
				"amount":  expense.Amount.StringFixed(2),
				"version": expected + 1,
			})
	})
	s.metrics.ExpenseWrite("update", err)
	if err != nil {
		return err
	}

	expense.Version = expected + 1
	s.notify(ExpenseUpdated, expense)
	return nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, actor Actor, id string) error {
	expenseID, err := parseID(id, "expense id")
	if err != nil {
		return err
	}
	expense, err := s.expenseRepo.FindByID(ctx, actor.CompanyID, expenseID)
	if err != nil {
		return translateDBError(err, "expense")
	}
	if expense.IsVirtual {
		return conflictError("virtual expenses cannot be deleted")
	}
	if expense.IsAutomaticallyCalculated {
		return conflictError("automatically calculated expenses cannot be deleted")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.expenseRepo.Delete(txCtx, actor.CompanyID, expense.ID)
		if err != nil {
			return translateDBError(err, "expense")
		}
		if rows == 0 {
			return notFoundError("expense")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteExpense, expense.ID.String(), expense.Description,
			map[string]interface{}{"amount": expense.Amount.StringFixed(2)})
	})
	s.metrics.ExpenseWrite("delete", err)
	if err != nil {
		return err
	}

	s.notify(ExpenseDeleted, expense)
	return nil
}

func (s *expenseService) GetExpense(ctx context.Context, actor Actor, id string) (*ExpenseResponse, error) {
	expenseID, err := parseID(id, "expense id")
	if err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, actor.CompanyID, expenseID)
	if err != nil {
		return nil, translateDBError(err, "expense")
	}
	return toExpenseResponse(expense), nil
}

func (s *expenseService) ListExpenses(ctx context.Context, actor Actor, query ExpenseQuery) ([]ExpenseResponse, int64, error) {
	filter, err := buildExpenseFilter(actor, query)
	if err != nil {
		return nil, 0, err
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	filter.Limit = query.Limit
	filter.Offset = (query.Page - 1) * query.Limit

	expenses, total, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	res := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		res = append(res, *toExpenseResponse(&expenses[i]))
	}
	return res, total, nil
}

func (s *expenseService) checkProjectAndContract(ctx context.Context, companyID uuid.UUID, projectID, contractID *uuid.UUID) error {
	if projectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, companyID, *projectID); err != nil {
			if isRecordNotFound(err) {
				return validationError("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}
	}
	if contractID != nil {
		contract, err := s.contractRepo.GetByID(ctx, companyID, *contractID)
		if err != nil {
			if isRecordNotFound(err) {
				return validationError("contract not found")
			}
			return fmt.Errorf("failed to load contract: %w", err)
		}
		if projectID != nil && contract.ProjectID != *projectID {
			return validationError("contract does not belong to the project")
		}
	}
	return nil
}

func (s *expenseService) notify(eventType string, e *model.Expense) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyExpense(ExpenseEvent{
		Type:      eventType,
		CompanyID: e.CompanyID.String(),
		ExpenseID: e.ID.String(),
		Amount:    e.Amount.StringFixed(2),
		At:        time.Now().UTC(),
	})
}

// --- Helpers ---

func validateAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, validationError("amount is required")
	}
	if amount.IsNegative() {
		return decimal.Zero, validationError("amount must be greater than or equal to 0")
	}
	return amount.Round(2), nil
}

func encodeExpenseDetails(code string, details map[string]string) (string, error) {
	clean, err := fieldschema.ValidateDetails(code, details)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	raw, err := fieldschema.EncodeDetails(clean)
	if err != nil {
		return "", fmt.Errorf("failed to encode details: %w", err)
	}
	return raw, nil
}

// buildExpenseFilter parses query-string values into a repository filter scoped to the actor's company.
func buildExpenseFilter(actor Actor, q ExpenseQuery) (repository.ExpenseFilter, error) {
	filter := repository.ExpenseFilter{
		CompanyID:      actor.CompanyID,
		HeadOfficeOnly: q.HeadOfficeOnly,
	}

	for _, raw := range q.ProjectIDs {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parseID(part, "project_ids")
			if err != nil {
				return filter, err
			}
			filter.ProjectIDs = append(filter.ProjectIDs, id)
		}
	}

	var err error
	if q.ContractID != "" {
		if filter.ContractID, err = parseOptionalID(&q.ContractID, "contract_id"); err != nil {
			return filter, err
		}
	}
	if q.CostCenterID != "" {
		if filter.CostCenterID, err = parseOptionalID(&q.CostCenterID, "cost_center_id"); err != nil {
			return filter, err
		}
	}
	if filter.StartDate, err = parseOptionalDate(&q.StartDate, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalDate(&q.EndDate, "end_date"); err != nil {
		return filter, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, validationError("end_date must not be before start_date")
	}

	switch strings.ToLower(q.Order) {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		return filter, validationError("order must be asc or desc")
	}
	return filter, nil
}

func toExpenseResponse(e *model.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:                        e.ID.String(),
		CompanyID:                 e.CompanyID.String(),
		ProjectID:                 idString(e.ProjectID),
		ContractID:                idString(e.ContractID),
		CostCenterID:              e.CostCenterID.String(),
		Description:               e.Description,
		Amount:                    e.Amount.StringFixed(2),
		Date:                      e.Date.Format(dateLayout),
		Observations:              e.Observations,
		SupplierName:              e.SupplierName,
		InvoiceNumber:             e.InvoiceNumber,
		AttachmentPath:            e.AttachmentPath,
		IsVirtual:                 e.IsVirtual,
		IsAutomaticallyCalculated: e.IsAutomaticallyCalculated,
		Version:                   e.Version,
		CreatedAt:                 e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 e.UpdatedAt.Format(time.RFC3339),
	}
	if e.Project != nil {
		resp.ProjectName = e.Project.Name
	}
	if e.Contract != nil {
		resp.ContractNumber = e.Contract.Number
	}
	code := ""
	if e.CostCenter != nil {
		code = e.CostCenter.Code
		resp.CostCenterCode = code
		resp.CostCenterName = e.CostCenter.Name
	}
	if details, ok := fieldschema.ParseDetails(e.DetailsJSON); ok {
		resp.Details = details
		resp.FormattedDetails = fieldschema.FormatDetails(code, details)
	}
	return resp
}

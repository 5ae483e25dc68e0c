package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractRequest struct {
	ProjectID   string           `json:"project_id"`
	Number      string           `json:"number"`
	Description string           `json:"description"`
	Value       *decimal.Decimal `json:"value"`
	StartDate   *string          `json:"start_date"`
	EndDate     *string          `json:"end_date"`
}

type ContractResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name,omitempty"`
	Number      string  `json:"number"`
	Description string  `json:"description"`
	Value       string  `json:"value"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	CreatedAt   string  `json:"created_at"`
}

type ContractService interface {
	CreateContract(ctx context.Context, actor Actor, req ContractRequest) (*ContractResponse, error)
	GetContract(ctx context.Context, actor Actor, id string) (*ContractResponse, error)
	ListContracts(ctx context.Context, actor Actor, projectID string, page, limit int) ([]ContractResponse, int64, error)
	UpdateContract(ctx context.Context, actor Actor, id string, req ContractRequest) (*ContractResponse, error)
	// DeleteContract refuses contracts that still have invoices or expenses.
	DeleteContract(ctx context.Context, actor Actor, id string) error
}

type contractService struct {
	repo        repository.ContractRepository
	projectRepo repository.ProjectRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewContractService(repo repository.ContractRepository, projectRepo repository.ProjectRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ContractService {
	return &contractService{repo: repo, projectRepo: projectRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *contractService) CreateContract(ctx context.Context, actor Actor, req ContractRequest) (*ContractResponse, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, validationError("project_id is required")
	}
	projectID, err := parseID(req.ProjectID, "project_id")
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, actor.CompanyID, projectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, validationError("project not found")
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	contract := &model.Contract{CompanyID: actor.CompanyID, ProjectID: project.ID}
	if err := applyContractRequest(contract, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, contract); err != nil {
			return translateDBError(err, "contract")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateContract, contract.ID.String(), contract.Number,
			map[string]interface{}{"project_id": project.ID.String(), "value": contract.Value.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	contract.Project = project
	return toContractResponse(contract), nil
}

func (s *contractService) GetContract(ctx context.Context, actor Actor, id string) (*ContractResponse, error) {
	contract, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(contract), nil
}

func (s *contractService) ListContracts(ctx context.Context, actor Actor, projectID string, page, limit int) ([]ContractResponse, int64, error) {
	var project *uuid.UUID
	if projectID != "" {
		id, err := parseID(projectID, "project_id")
		if err != nil {
			return nil, 0, err
		}
		project = &id
	}

	contracts, total, err := s.repo.List(ctx, actor.CompanyID, project, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	res := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		res = append(res, *toContractResponse(&contracts[i]))
	}
	return res, total, nil
}

func (s *contractService) UpdateContract(ctx context.Context, actor Actor, id string, req ContractRequest) (*ContractResponse, error) {
	contract, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyContractRequest(contract, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, contract); err != nil {
			return translateDBError(err, "contract")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateContract, contract.ID.String(), contract.Number,
			map[string]interface{}{"value": contract.Value.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	return toContractResponse(contract), nil
}

func (s *contractService) DeleteContract(ctx context.Context, actor Actor, id string) error {
	contract, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}

	invoices, err := s.repo.CountInvoices(ctx, contract.ID)
	if err != nil {
		return fmt.Errorf("failed to check contract invoices: %w", err)
	}
	if invoices > 0 {
		return conflictError("contract %s has %d invoices", contract.Number, invoices)
	}
	expenses, err := s.repo.CountExpenses(ctx, contract.ID)
	if err != nil {
		return fmt.Errorf("failed to check contract expenses: %w", err)
	}
	if expenses > 0 {
		return conflictError("contract %s is cited by %d expenses", contract.Number, expenses)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, actor.CompanyID, contract.ID)
		if err != nil {
			return translateDBError(err, "contract")
		}
		if rows == 0 {
			return notFoundError("contract")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteContract, contract.ID.String(), contract.Number, nil)
	})
}

func (s *contractService) load(ctx context.Context, actor Actor, rawID string) (*model.Contract, error) {
	id, err := parseID(rawID, "contract id")
	if err != nil {
		return nil, err
	}
	contract, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "contract")
	}
	return contract, nil
}

func applyContractRequest(c *model.Contract, req ContractRequest) error {
	if number := strings.TrimSpace(req.Number); number != "" {
		c.Number = number
	}
	if c.Number == "" {
		return validationError("number is required")
	}
	c.Description = sanitizeText(req.Description)
	if req.Value != nil {
		if req.Value.IsNegative() {
			return validationError("value must be greater than or equal to 0")
		}
		c.Value = req.Value.Round(2)
	}

	var err error
	if req.StartDate != nil {
		if c.StartDate, err = parseOptionalDate(req.StartDate, "start_date"); err != nil {
			return err
		}
	}
	if req.EndDate != nil {
		if c.EndDate, err = parseOptionalDate(req.EndDate, "end_date"); err != nil {
			return err
		}
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return validationError("end_date must not be before start_date")
	}
	return nil
}

func toContractResponse(c *model.Contract) *ContractResponse {
	res := &ContractResponse{
		ID:          c.ID.String(),
		ProjectID:   c.ProjectID.String(),
		Number:      c.Number,
		Description: c.Description,
		Value:       c.Value.StringFixed(2),
		StartDate:   formatDate(c.StartDate),
		EndDate:     formatDate(c.EndDate),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
	if c.Project != nil {
		res.ProjectName = c.Project.Name
	}
	return res
}

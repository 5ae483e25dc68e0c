package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"
)

type CompanyRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	CreatedAt string `json:"created_at"`
}

type CompanyService interface {
	CreateCompany(ctx context.Context, actor Actor, req CompanyRequest) (*CompanyResponse, error)
	GetCompany(ctx context.Context, id string) (*CompanyResponse, error)
	ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error)
	UpdateCompany(ctx context.Context, actor Actor, id string, req CompanyRequest) (*CompanyResponse, error)
	DeleteCompany(ctx context.Context, actor Actor, id string) error
}

type companyService struct {
	repo      repository.CompanyRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewCompanyService(repo repository.CompanyRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) CompanyService {
	return &companyService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *companyService) CreateCompany(ctx context.Context, actor Actor, req CompanyRequest) (*CompanyResponse, error) {
	company := &model.Company{Name: sanitizeText(req.Name), TaxID: digitsOnly(req.TaxID)}
	if company.Name == "" {
		return nil, validationError("name is required")
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, company); err != nil {
			return translateDBError(err, "company")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateCompany, company.ID.String(), company.Name,
			map[string]interface{}{"tax_id": company.TaxID})
	})
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) GetCompany(ctx context.Context, id string) (*CompanyResponse, error) {
	companyID, err := parseID(id, "company id")
	if err != nil {
		return nil, err
	}
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, translateDBError(err, "company")
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	res := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		res = append(res, *toCompanyResponse(&companies[i]))
	}
	return res, total, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, actor Actor, id string, req CompanyRequest) (*CompanyResponse, error) {
	companyID, err := parseID(id, "company id")
	if err != nil {
		return nil, err
	}
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, translateDBError(err, "company")
	}

	if name := sanitizeText(req.Name); name != "" {
		company.Name = name
	}
	if req.TaxID != "" {
		company.TaxID = digitsOnly(req.TaxID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, company); err != nil {
			return translateDBError(err, "company")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateCompany, company.ID.String(), company.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (s *companyService) DeleteCompany(ctx context.Context, actor Actor, id string) error {
	companyID, err := parseID(id, "company id")
	if err != nil {
		return err
	}
	if companyID == actor.CompanyID {
		return conflictError("you cannot delete your own company")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, companyID)
		if err != nil {
			return translateDBError(err, "company")
		}
		if rows == 0 {
			return notFoundError("company")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteCompany, companyID.String(), "", nil)
	})
}

func toCompanyResponse(c *model.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		TaxID:     c.TaxID,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// digitsOnly strips CNPJ/CPF punctuation.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sgo/internal/config"
	"sgo/internal/fieldschema"
	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CreateCostCenterRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	// Global creates a catalog entry shared by all companies. Admin only.
	Global bool `json:"global"`
}

type CostCenterResponse struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	CompanyID *string `json:"company_id"`
	Schema    string  `json:"schema,omitempty"`
}

type CostCenterFieldsResponse struct {
	CostCenterID string                        `json:"cost_center_id"`
	Code         string                        `json:"code"`
	Schema       string                        `json:"schema,omitempty"`
	Fields       []fieldschema.FieldDefinition `json:"fields"`
}

type CostCenterService interface {
	ListCostCenters(ctx context.Context, actor Actor) ([]CostCenterResponse, error)
	CreateCostCenter(ctx context.Context, actor Actor, req CreateCostCenterRequest) (*CostCenterResponse, error)
	DeleteCostCenter(ctx context.Context, actor Actor, id string) error
	GetFields(ctx context.Context, actor Actor, id string) (*CostCenterFieldsResponse, error)
	// SeedCatalog inserts missing global entries and returns how many were added.
	SeedCatalog(ctx context.Context, catalog []config.CostCenterSeed) (int, error)
}

type costCenterService struct {
	repo      repository.CostCenterRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewCostCenterService(repo repository.CostCenterRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) CostCenterService {
	return &costCenterService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *costCenterService) ListCostCenters(ctx context.Context, actor Actor) ([]CostCenterResponse, error) {
	list, err := s.repo.ListVisible(ctx, actor.companyRef())
	if err != nil {
		return nil, fmt.Errorf("failed to list cost centers: %w", err)
	}
	res := make([]CostCenterResponse, 0, len(list))
	for i := range list {
		res = append(res, toCostCenterResponse(&list[i]))
	}
	return res, nil
}

func (s *costCenterService) CreateCostCenter(ctx context.Context, actor Actor, req CreateCostCenterRequest) (*CostCenterResponse, error) {
	name := sanitizeText(req.Name)
	if name == "" {
		return nil, unprocessableError("name is required")
	}
	if req.Global && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can create global cost centers", ErrForbidden)
	}

	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = slug.Make(name)
	}

	cc := &model.CostCenter{Code: code, Name: name}
	if !req.Global {
		cc.CompanyID = actor.companyRef()
		if cc.CompanyID == nil {
			return nil, validationError("a company is required for company cost centers")
		}
	}

	taken, err := s.repo.NameTaken(ctx, cc.CompanyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check cost center name: %w", err)
	}
	if taken {
		return nil, conflictError("a cost center named %q already exists", name)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, cc); err != nil {
			return translateDBError(err, "cost center")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateCostCenter, cc.ID.String(), cc.Name,
			map[string]interface{}{"code": cc.Code, "global": cc.IsGlobal()})
	})
	if err != nil {
		return nil, err
	}

	res := toCostCenterResponse(cc)
	return &res, nil
}

func (s *costCenterService) DeleteCostCenter(ctx context.Context, actor Actor, id string) error {
	cc, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if cc.IsGlobal() && !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete global cost centers", ErrForbidden)
	}

	used, err := s.repo.CountExpenses(ctx, cc.ID)
	if err != nil {
		return fmt.Errorf("failed to check cost center usage: %w", err)
	}
	if used > 0 {
		return conflictError("cost center %q is used by %d expenses", cc.Name, used)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, cc.ID)
		if err != nil {
			return translateDBError(err, "cost center")
		}
		if rows == 0 {
			return notFoundError("cost center")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteCostCenter, cc.ID.String(), cc.Name, nil)
	})
}

func (s *costCenterService) GetFields(ctx context.Context, actor Actor, id string) (*CostCenterFieldsResponse, error) {
	cc, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	schema, _ := fieldschema.SchemaFor(cc.Code)
	return &CostCenterFieldsResponse{
		CostCenterID: cc.ID.String(),
		Code:         cc.Code,
		Schema:       schema,
		Fields:       fieldschema.FieldsFor(cc.Code),
	}, nil
}

func (s *costCenterService) SeedCatalog(ctx context.Context, catalog []config.CostCenterSeed) (int, error) {
	added := 0
	for _, seed := range catalog {
		code := seed.Code
		if code == "" {
			code = slug.Make(seed.Name)
		}
		_, err := s.repo.FindGlobalByCode(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return added, fmt.Errorf("failed to look up cost center %s: %w", code, err)
		}
		if err := s.repo.Create(ctx, &model.CostCenter{Code: code, Name: seed.Name}); err != nil {
			return added, fmt.Errorf("failed to seed cost center %s: %w", code, err)
		}
		added++
	}
	return added, nil
}

// visible loads a cost center the actor may see: global entries or the actor's own company's.
func (s *costCenterService) visible(ctx context.Context, actor Actor, rawID string) (*model.CostCenter, error) {
	id, err := parseID(rawID, "cost center id")
	if err != nil {
		return nil, err
	}
	cc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "cost center")
	}
	if !costCenterVisibleTo(cc, actor.CompanyID) {
		return nil, notFoundError("cost center")
	}
	return cc, nil
}

func toCostCenterResponse(cc *model.CostCenter) CostCenterResponse {
	schema, _ := fieldschema.SchemaFor(cc.Code)
	return CostCenterResponse{
		ID:        cc.ID.String(),
		Code:      cc.Code,
		Name:      cc.Name,
		CompanyID: idString(cc.CompanyID),
		Schema:    schema,
	}
}

// costCenterVisibleTo reports whether a loaded cost center can be used by companyID.
func costCenterVisibleTo(cc *model.CostCenter, companyID uuid.UUID) bool {
	return cc.IsGlobal() || *cc.CompanyID == companyID
}

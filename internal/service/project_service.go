package service

import (
	"context"
	"fmt"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
)

type ProjectRequest struct {
	Name      string           `json:"name"`
	Code      string           `json:"code"`
	Address   string           `json:"address"`
	Status    string           `json:"status"`
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`
	Budget    *decimal.Decimal `json:"budget"`
}

type ProjectResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Address   string  `json:"address"`
	Status    string  `json:"status"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Budget    string  `json:"budget"`
	CreatedAt string  `json:"created_at"`
}

type ProjectService interface {
	CreateProject(ctx context.Context, actor Actor, req ProjectRequest) (*ProjectResponse, error)
	GetProject(ctx context.Context, actor Actor, id string) (*ProjectResponse, error)
	ListProjects(ctx context.Context, actor Actor, status string, page, limit int) ([]ProjectResponse, int64, error)
	UpdateProject(ctx context.Context, actor Actor, id string, req ProjectRequest) (*ProjectResponse, error)
	DeleteProject(ctx context.Context, actor Actor, id string) error
}

type projectService struct {
	repo      repository.ProjectRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewProjectService(repo repository.ProjectRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ProjectService {
	return &projectService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *projectService) CreateProject(ctx context.Context, actor Actor, req ProjectRequest) (*ProjectResponse, error) {
	project := &model.Project{CompanyID: actor.CompanyID, Status: model.ProjectPlanning}
	if err := applyProjectRequest(project, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, project); err != nil {
			return translateDBError(err, "project")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateProject, project.ID.String(), project.Name,
			map[string]interface{}{"status": project.Status, "budget": project.Budget.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) GetProject(ctx context.Context, actor Actor, id string) (*ProjectResponse, error) {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) ListProjects(ctx context.Context, actor Actor, status string, page, limit int) ([]ProjectResponse, int64, error) {
	if status != "" && !model.ValidProjectStatus(status) {
		return nil, 0, validationError("invalid status %q", status)
	}
	projects, total, err := s.repo.List(ctx, actor.CompanyID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	res := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, *toProjectResponse(&projects[i]))
	}
	return res, total, nil
}

func (s *projectService) UpdateProject(ctx context.Context, actor Actor, id string, req ProjectRequest) (*ProjectResponse, error) {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyProjectRequest(project, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, project); err != nil {
			return translateDBError(err, "project")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateProject, project.ID.String(), project.Name,
			map[string]interface{}{"status": project.Status})
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) DeleteProject(ctx context.Context, actor Actor, id string) error {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	deps, err := s.repo.CountDependents(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to check project usage: %w", err)
	}
	if deps > 0 {
		return conflictError("project %q still has contracts, expenses or allocations", project.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, actor.CompanyID, project.ID)
		if err != nil {
			return translateDBError(err, "project")
		}
		if rows == 0 {
			return notFoundError("project")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteProject, project.ID.String(), project.Name, nil)
	})
}

func (s *projectService) load(ctx context.Context, actor Actor, rawID string) (*model.Project, error) {
	id, err := parseID(rawID, "project id")
	if err != nil {
		return nil, err
	}
	project, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "project")
	}
	return project, nil
}

func applyProjectRequest(p *model.Project, req ProjectRequest) error {
	if name := sanitizeText(req.Name); name != "" {
		p.Name = name
	}
	if p.Name == "" {
		return validationError("name is required")
	}
	if req.Status != "" {
		if !model.ValidProjectStatus(req.Status) {
			return validationError("status must be planning, active, paused or finished")
		}
		p.Status = req.Status
	}
	if req.Budget != nil {
		if req.Budget.IsNegative() {
			return validationError("budget must be greater than or equal to 0")
		}
		p.Budget = req.Budget.Round(2)
	}

	var err error
	if req.StartDate != nil {
		if p.StartDate, err = parseOptionalDate(req.StartDate, "start_date"); err != nil {
			return err
		}
	}
	if req.EndDate != nil {
		if p.EndDate, err = parseOptionalDate(req.EndDate, "end_date"); err != nil {
			return err
		}
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return validationError("end_date must not be before start_date")
	}

	p.Code = sanitizeText(req.Code)
	p.Address = sanitizeText(req.Address)
	return nil
}

func toProjectResponse(p *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Code:      p.Code,
		Address:   p.Address,
		Status:    p.Status,
		StartDate: formatDate(p.StartDate),
		EndDate:   formatDate(p.EndDate),
		Budget:    p.Budget.StringFixed(2),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

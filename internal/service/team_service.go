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

var thirty = decimal.NewFromInt(30)

type AllocateEmployeeRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type EndAllocationRequest struct {
	// EndDate defaults to today.
	EndDate string `json:"end_date"`
}

type AllocationResponse struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"project_id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	Position      string  `json:"position"`
	StartDate     string  `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Active        bool    `json:"active"`
	EstimatedCost string  `json:"estimated_cost"`
}

type TeamService interface {
	AllocateEmployee(ctx context.Context, actor Actor, projectID string, req AllocateEmployeeRequest) (*AllocationResponse, error)
	// ListTeam includes ended allocations.
	ListTeam(ctx context.Context, actor Actor, projectID string) ([]AllocationResponse, error)
	EndAllocation(ctx context.Context, actor Actor, id string, req EndAllocationRequest) (*AllocationResponse, error)
}

type teamService struct {
	repo         repository.AllocationRepository
	projectRepo  repository.ProjectRepository
	employeeRepo repository.EmployeeRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	now          func() time.Time
}

func NewTeamService(
	repo repository.AllocationRepository,
	projectRepo repository.ProjectRepository,
	employeeRepo repository.EmployeeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TeamService {
	return &teamService{
		repo:         repo,
		projectRepo:  projectRepo,
		employeeRepo: employeeRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		now:          time.Now,
	}
}

func (s *teamService) AllocateEmployee(ctx context.Context, actor Actor, projectID string, req AllocateEmployeeRequest) (*AllocationResponse, error) {
	project, err := s.project(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.EmployeeID) == "" {
		return nil, validationError("employee_id is required")
	}
	employeeID, err := parseID(req.EmployeeID, "employee_id")
	if err != nil {
		return nil, err
	}
	employee, err := s.employeeRepo.GetByID(ctx, actor.CompanyID, employeeID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, validationError("employee not found")
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if !employee.Active {
		return nil, validationError("employee %q is inactive", employee.Name)
	}

	if strings.TrimSpace(req.StartDate) == "" {
		return nil, validationError("start_date is required")
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, validationError("end_date must not be before start_date")
	}

	allocation := &model.ProjectEmployee{
		ProjectID:  project.ID,
		EmployeeID: employee.ID,
		StartDate:  start,
		EndDate:    end,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, allocation); err != nil {
			return translateDBError(err, "allocation")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionAllocateEmployee, allocation.ID.String(), employee.Name,
			map[string]interface{}{"project": project.Name, "start_date": req.StartDate})
	})
	if err != nil {
		return nil, err
	}

	allocation.Employee = employee
	return s.toResponse(allocation), nil
}

func (s *teamService) ListTeam(ctx context.Context, actor Actor, projectID string) ([]AllocationResponse, error) {
	project, err := s.project(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	res := make([]AllocationResponse, 0, len(list))
	for i := range list {
		res = append(res, *s.toResponse(&list[i]))
	}
	return res, nil
}

func (s *teamService) EndAllocation(ctx context.Context, actor Actor, id string, req EndAllocationRequest) (*AllocationResponse, error) {
	allocationID, err := parseID(id, "allocation id")
	if err != nil {
		return nil, err
	}
	allocation, err := s.repo.GetByID(ctx, actor.CompanyID, allocationID)
	if err != nil {
		return nil, translateDBError(err, "allocation")
	}
	if allocation.EndDate != nil {
		return nil, conflictError("allocation already ended on %s", allocation.EndDate.Format(dateLayout))
	}

	end := dateOnly(s.now())
	if strings.TrimSpace(req.EndDate) != "" {
		if end, err = parseDate(req.EndDate, "end_date"); err != nil {
			return nil, err
		}
	}
	if end.Before(allocation.StartDate) {
		return nil, validationError("end_date must not be before start_date")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ended, err := s.repo.End(txCtx, allocation.ID, end)
		if err != nil {
			return translateDBError(err, "allocation")
		}
		if !ended {
			return conflictError("allocation already ended")
		}
		name := ""
		if allocation.Employee != nil {
			name = allocation.Employee.Name
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionEndAllocation, allocation.ID.String(), name,
			map[string]interface{}{"end_date": end.Format(dateLayout)})
	})
	if err != nil {
		return nil, err
	}

	allocation.EndDate = &end
	return s.toResponse(allocation), nil
}

func (s *teamService) project(ctx context.Context, actor Actor, rawID string) (*model.Project, error) {
	id, err := parseID(rawID, "project id")
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "project")
	}
	return project, nil
}

func (s *teamService) toResponse(a *model.ProjectEmployee) *AllocationResponse {
	res := &AllocationResponse{
		ID:         a.ID.String(),
		ProjectID:  a.ProjectID.String(),
		EmployeeID: a.EmployeeID.String(),
		StartDate:  a.StartDate.Format(dateLayout),
		EndDate:    formatDate(a.EndDate),
		Active:     a.EndDate == nil,
	}

	salary := decimal.Zero
	if a.Employee != nil {
		res.EmployeeName = a.Employee.Name
		res.Position = a.Employee.Position
		salary = a.Employee.MonthlySalary
	}
	until := dateOnly(s.now())
	if a.EndDate != nil {
		until = *a.EndDate
	}
	res.EstimatedCost = AllocationCost(salary, a.StartDate, until).StringFixed(2)
	return res
}

// AllocationCost is monthlySalary / 30 per day, counting start and end days.
// A window ending before it starts costs nothing.
func AllocationCost(monthlySalary decimal.Decimal, start, end time.Time) decimal.Decimal {
	days := int64(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
	if days <= 0 {
		return decimal.Zero
	}
	return monthlySalary.Div(thirty).Mul(decimal.NewFromInt(days)).Round(2)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

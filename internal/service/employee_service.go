package service

import (
	"context"
	"fmt"
	"time"

	"sgo/internal/model"
	"sgo/internal/repository"

	"github.com/shopspring/decimal"
)

type EmployeeRequest struct {
	Name          string           `json:"name"`
	Document      string           `json:"document"`
	Position      string           `json:"position"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
	HireDate      *string          `json:"hire_date"`
	Active        *bool            `json:"active"`
}

type EmployeeResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Document      string  `json:"document"`
	Position      string  `json:"position"`
	MonthlySalary string  `json:"monthly_salary"`
	HireDate      *string `json:"hire_date"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
}

type EmployeeService interface {
	CreateEmployee(ctx context.Context, actor Actor, req EmployeeRequest) (*EmployeeResponse, error)
	GetEmployee(ctx context.Context, actor Actor, id string) (*EmployeeResponse, error)
	ListEmployees(ctx context.Context, actor Actor, activeOnly bool, page, limit int) ([]EmployeeResponse, int64, error)
	UpdateEmployee(ctx context.Context, actor Actor, id string, req EmployeeRequest) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, actor Actor, id string) error
}

type employeeService struct {
	repo      repository.EmployeeRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewEmployeeService(repo repository.EmployeeRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) EmployeeService {
	return &employeeService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *employeeService) CreateEmployee(ctx context.Context, actor Actor, req EmployeeRequest) (*EmployeeResponse, error) {
	employee := &model.Employee{CompanyID: actor.CompanyID, Active: true}
	if err := applyEmployeeRequest(employee, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, employee); err != nil {
			return translateDBError(err, "employee")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateEmployee, employee.ID.String(), employee.Name,
			map[string]interface{}{"position": employee.Position})
	})
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(employee), nil
}

func (s *employeeService) GetEmployee(ctx context.Context, actor Actor, id string) (*EmployeeResponse, error) {
	employee, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(employee), nil
}

func (s *employeeService) ListEmployees(ctx context.Context, actor Actor, activeOnly bool, page, limit int) ([]EmployeeResponse, int64, error) {
	employees, total, err := s.repo.List(ctx, actor.CompanyID, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	res := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		res = append(res, *toEmployeeResponse(&employees[i]))
	}
	return res, total, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, actor Actor, id string, req EmployeeRequest) (*EmployeeResponse, error) {
	employee, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyEmployeeRequest(employee, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, employee); err != nil {
			return translateDBError(err, "employee")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateEmployee, employee.ID.String(), employee.Name,
			map[string]interface{}{"active": employee.Active})
	})
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(employee), nil
}

// DeleteEmployee refuses employees with allocation history; deactivate them instead.
func (s *employeeService) DeleteEmployee(ctx context.Context, actor Actor, id string) error {
	employee, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	allocations, err := s.repo.CountAllocations(ctx, employee.ID)
	if err != nil {
		return fmt.Errorf("failed to check employee allocations: %w", err)
	}
	if allocations > 0 {
		return conflictError("employee %q has allocation history; deactivate instead", employee.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.Delete(txCtx, actor.CompanyID, employee.ID)
		if err != nil {
			return translateDBError(err, "employee")
		}
		if rows == 0 {
			return notFoundError("employee")
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteEmployee, employee.ID.String(), employee.Name, nil)
	})
}

func (s *employeeService) load(ctx context.Context, actor Actor, rawID string) (*model.Employee, error) {
	id, err := parseID(rawID, "employee id")
	if err != nil {
		return nil, err
	}
	employee, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, translateDBError(err, "employee")
	}
	return employee, nil
}

func applyEmployeeRequest(e *model.Employee, req EmployeeRequest) error {
	if name := sanitizeText(req.Name); name != "" {
		e.Name = name
	}
	if e.Name == "" {
		return validationError("name is required")
	}
	if req.Document != "" {
		e.Document = digitsOnly(req.Document)
	}
	if req.Position != "" {
		e.Position = sanitizeText(req.Position)
	}
	if req.MonthlySalary != nil {
		if req.MonthlySalary.IsNegative() {
			return validationError("monthly_salary must be greater than or equal to 0")
		}
		e.MonthlySalary = req.MonthlySalary.Round(2)
	}
	if req.HireDate != nil {
		hire, err := parseOptionalDate(req.HireDate, "hire_date")
		if err != nil {
			return err
		}
		e.HireDate = hire
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	return nil
}

func toEmployeeResponse(e *model.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		Document:      e.Document,
		Position:      e.Position,
		MonthlySalary: e.MonthlySalary.StringFixed(2),
		HireDate:      formatDate(e.HireDate),
		Active:        e.Active,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

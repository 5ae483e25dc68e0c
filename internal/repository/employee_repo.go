package repository

import (
	"context"
	"time"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Employee, error)
	List(ctx context.Context, companyID uuid.UUID, activeOnly bool, page, limit int) ([]model.Employee, int64, error)
	Update(ctx context.Context, employee *model.Employee) error
	CountAllocations(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error)
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	return GetDB(ctx, r.db).Create(employee).Error
}

func (r *employeeRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	if err := GetDB(ctx, r.db).First(&employee, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context, companyID uuid.UUID, activeOnly bool, page, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Employee{}).Where("company_id = ?", companyID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	if err := q.Order("name asc").Offset(offset).Limit(size).Find(&employees).Error; err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *employeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	return GetDB(ctx, r.db).Save(employee).Error
}

func (r *employeeRepository) CountAllocations(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ProjectEmployee{}).Where("employee_id = ?", id).Count(&count).Error
	return count, err
}

func (r *employeeRepository) Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.Employee{}, "id = ? AND company_id = ?", id, companyID)
	return res.RowsAffected, res.Error
}

// AllocationRepository stores employee allocations to projects.
type AllocationRepository interface {
	Create(ctx context.Context, allocation *model.ProjectEmployee) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.ProjectEmployee, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectEmployee, error)
	// End sets end_date on an open allocation and reports whether a row changed.
	End(ctx context.Context, id uuid.UUID, endDate time.Time) (bool, error)
}

type allocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) Create(ctx context.Context, allocation *model.ProjectEmployee) error {
	return GetDB(ctx, r.db).Omit("Employee", "Project").Create(allocation).Error
}

func (r *allocationRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.ProjectEmployee, error) {
	var allocation model.ProjectEmployee
	err := GetDB(ctx, r.db).Preload("Employee").
		Joins("JOIN projects ON projects.id = project_employees.project_id").
		Where("project_employees.id = ? AND projects.company_id = ?", id, companyID).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *allocationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectEmployee, error) {
	var list []model.ProjectEmployee
	err := GetDB(ctx, r.db).Preload("Employee").
		Where("project_id = ?", projectID).
		Order("start_date asc, created_at asc").
		Find(&list).Error
	return list, err
}

func (r *allocationRepository) End(ctx context.Context, id uuid.UUID, endDate time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.ProjectEmployee{}).
		Where("id = ? AND end_date IS NULL", id).
		Updates(map[string]interface{}{"end_date": endDate, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

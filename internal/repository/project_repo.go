package repository

import (
	"context"

	"sgo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]model.Project, int64, error)
	Update(ctx context.Context, project *model.Project) error
	// CountDependents counts contracts, expenses and allocations that reference the project.
	CountDependents(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, companyID uuid.UUID, status string, page, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Project{}).Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	if err := q.Order("name asc").Offset(offset).Limit(size).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}

func (r *projectRepository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)
	var total int64
	for _, m := range []interface{}{&model.Contract{}, &model.Expense{}, &model.ProjectEmployee{}} {
		var n int64
		if err := db.Model(m).Where("project_id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *projectRepository) Delete(ctx context.Context, companyID, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Delete(&model.Project{}, "id = ? AND company_id = ?", id, companyID)
	return res.RowsAffected, res.Error
}

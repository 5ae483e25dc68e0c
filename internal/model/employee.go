package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Document      string          `gorm:"type:varchar(20)" json:"document"` // CPF
	Position      string          `gorm:"type:varchar(100)" json:"position"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"monthly_salary"`
	HireDate      *time.Time      `json:"hire_date"`
	Active        bool            `gorm:"not null" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// ProjectEmployee allocates an employee to a project for a date window.
// Ending an allocation sets EndDate; rows are kept as history.
type ProjectEmployee struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project    *Project   `gorm:"foreignKey:ProjectID" json:"-"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *Employee  `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	StartDate  time.Time  `gorm:"not null" json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p *ProjectEmployee) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

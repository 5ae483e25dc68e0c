package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProjectPlanning = "planning"
	ProjectActive   = "active"
	ProjectPaused   = "paused"
	ProjectFinished = "finished"
)

// Project is a construction site (obra).
type Project struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company        `gorm:"foreignKey:CompanyID" json:"-"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Code      string          `gorm:"type:varchar(50)" json:"code"`
	Address   string          `gorm:"type:text" json:"address"`
	Status    string          `gorm:"type:varchar(20);not null;index" json:"status"`
	StartDate *time.Time      `json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
	Budget    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"budget"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectPlanning, ProjectActive, ProjectPaused, ProjectFinished:
		return true
	}
	return false
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contract is signed for one project and billed through contract invoices.
type Contract struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	ProjectID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Number      string          `gorm:"type:varchar(50);not null" json:"number"`
	Description string          `gorm:"type:text" json:"description"`
	Value       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"value"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Contract) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CostCenter classifies expenses. Code is the stable identifier that selects the
// detail field schema; CompanyID is nil for the seeded global catalog.
type CostCenter struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string     `gorm:"type:varchar(100);not null;index" json:"code"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *CostCenter) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// IsGlobal is true for catalog entries shared by all companies.
func (c *CostCenter) IsGlobal() bool {
	return c.CompanyID == nil
}

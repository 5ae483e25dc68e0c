package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a cost tagged with a cost center. A nil ProjectID marks a head-office
// expense; a project-linked expense always cites a contract.
type Expense struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	ProjectID    *uuid.UUID  `gorm:"type:uuid;index" json:"project_id"`
	Project      *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ContractID   *uuid.UUID  `gorm:"type:uuid;index" json:"contract_id"`
	Contract     *Contract   `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	CostCenterID uuid.UUID   `gorm:"type:uuid;not null;index" json:"cost_center_id"`
	CostCenter   *CostCenter `gorm:"foreignKey:CostCenterID" json:"cost_center,omitempty"`

	Description    string          `gorm:"type:text" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date           time.Time       `gorm:"column:expense_date;not null;index" json:"date"`
	Observations   string          `gorm:"type:text" json:"observations,omitempty"`
	SupplierName   string          `gorm:"type:varchar(255)" json:"supplier_name,omitempty"`
	InvoiceNumber  string          `gorm:"type:varchar(50)" json:"invoice_number,omitempty"`
	AttachmentPath string          `gorm:"type:varchar(255)" json:"attachment_path,omitempty"`

	// Raw JSON object of detail values keyed by field name. Stored as text so a
	// damaged payload can still be read back.
	DetailsJSON string `gorm:"column:details_json;type:text" json:"details_json,omitempty"`

	IsVirtual                 bool `gorm:"not null;default:false" json:"is_virtual"`
	IsAutomaticallyCalculated bool `gorm:"not null;default:false" json:"is_automatically_calculated"`

	// Version is bumped on every update and checked by the update statement.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	if e.Version == 0 {
		e.Version = 1
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

// ContractInvoice is a billing document issued against a contract.
type ContractInvoice struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   *Contract       `gorm:"foreignKey:ContractID" json:"-"`
	Number     string          `gorm:"type:varchar(50);not null" json:"number"`
	IssueDate  time.Time       `gorm:"not null" json:"issue_date"`
	DueDate    *time.Time      `json:"due_date"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status     string          `gorm:"type:varchar(20);not null;index" json:"status"`
	PaidAt     *time.Time      `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (i *ContractInvoice) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func ValidInvoiceStatus(status string) bool {
	switch status {
	case InvoicePending, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

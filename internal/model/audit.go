package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreateCompany    = "CREATE_COMPANY"
	ActionUpdateCompany    = "UPDATE_COMPANY"
	ActionDeleteCompany    = "DELETE_COMPANY"
	ActionCreateCostCenter = "CREATE_COST_CENTER"
	ActionDeleteCostCenter = "DELETE_COST_CENTER"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionDeleteProject    = "DELETE_PROJECT"
	ActionCreateContract   = "CREATE_CONTRACT"
	ActionUpdateContract   = "UPDATE_CONTRACT"
	ActionDeleteContract   = "DELETE_CONTRACT"
	ActionCreateInvoice    = "CREATE_CONTRACT_INVOICE"
	ActionUpdateInvoice    = "UPDATE_CONTRACT_INVOICE"
	ActionDeleteInvoice    = "DELETE_CONTRACT_INVOICE"
	ActionCreateEmployee   = "CREATE_EMPLOYEE"
	ActionUpdateEmployee   = "UPDATE_EMPLOYEE"
	ActionDeleteEmployee   = "DELETE_EMPLOYEE"
	ActionAllocateEmployee = "ALLOCATE_EMPLOYEE"
	ActionEndAllocation    = "END_ALLOCATION"
	ActionCreateExpense    = "CREATE_EXPENSE"
	ActionUpdateExpense    = "UPDATE_EXPENSE"
	ActionDeleteExpense    = "DELETE_EXPENSE"
)

// AuditLog records who changed what. It is written in the same transaction as the change.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  *uuid.UUID        `gorm:"type:uuid;index" json:"company_id"`
	UserID     *uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	User       *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string            `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string            `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string            `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSONMap `json:"details"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

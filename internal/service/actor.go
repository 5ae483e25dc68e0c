package service

import (
	"sgo/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller. CompanyID scopes every tenant query.
type Actor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) companyRef() *uuid.UUID {
	if a.CompanyID == uuid.Nil {
		return nil
	}
	id := a.CompanyID
	return &id
}

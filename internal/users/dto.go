package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                uuid.UUID      `json:"id"`
	Email             string         `json:"email"`
	Name              string         `json:"name"`
	Role              enums.UserRole `json:"role"`
	TenantID          *uuid.UUID     `json:"tenant_id,omitempty"`
	CanManageUsers    bool           `json:"can_manage_users"`
	CanManageInvoices bool           `json:"can_manage_invoices"`
	CanManageStock    bool           `json:"can_manage_stock"`
	IsActive          bool           `json:"is_active"`
	LastLoginAt       *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	Name              string
	Role              enums.UserRole
	TenantID          *uuid.UUID
	CanManageUsers    bool
	CanManageInvoices bool
	CanManageStock    bool
	IsActive          *bool
	CreatedBy         *uuid.UUID
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Role:              u.Role,
		TenantID:          u.TenantID,
		CanManageUsers:    u.CanManageUsers,
		CanManageInvoices: u.CanManageInvoices,
		CanManageStock:    u.CanManageStock,
		IsActive:          u.IsActive,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		ID:                uuid.New(),
		Email:             c.Email,
		PasswordHash:      c.PasswordHash,
		Name:              c.Name,
		Role:              c.Role,
		TenantID:          c.TenantID,
		CanManageUsers:    c.CanManageUsers,
		CanManageInvoices: c.CanManageInvoices,
		CanManageStock:    c.CanManageStock,
		IsActive:          isActive,
		CreatedBy:         c.CreatedBy,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// User represents the canonical identity entity. TenantID is nil for super
// admins, who operate across tenants.
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email             string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash      string         `gorm:"column:password_hash;not null"`
	Name              string         `gorm:"column:name;not null"`
	Role              enums.UserRole `gorm:"column:role;type:text;not null"`
	TenantID          *uuid.UUID     `gorm:"column:tenant_id;type:uuid;index"`
	CanManageUsers    bool           `gorm:"column:can_manage_users;not null;default:false"`
	CanManageInvoices bool           `gorm:"column:can_manage_invoices;not null;default:false"`
	CanManageStock    bool           `gorm:"column:can_manage_stock;not null;default:false"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true"`
	CreatedBy         *uuid.UUID     `gorm:"column:created_by;type:uuid"`
	LastLoginAt       *time.Time     `gorm:"column:last_login_at"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

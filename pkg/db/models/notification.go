package models

import (
	"time"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// Notification is an in-app message surfaced to a tenant's owner, written by
// the subscription reconcile job.
type Notification struct {
	TenantRecord
	Kind          enums.NotificationKind `gorm:"column:kind;type:text;not null" json:"kind"`
	Message       string                 `gorm:"column:message;not null" json:"message"`
	DaysRemaining int                    `gorm:"column:days_remaining;not null;default:0" json:"days_remaining"`
	ReadAt        *time.Time             `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

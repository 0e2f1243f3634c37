package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only trail row. TenantID is nil for platform-level
// actions performed by super admins.
type AuditLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   *uuid.UUID      `gorm:"column:tenant_id;type:uuid;index"`
	ActorID    *uuid.UUID      `gorm:"column:actor_id;type:uuid"`
	ActorEmail string          `gorm:"column:actor_email;not null"`
	Action     string          `gorm:"column:action;not null;index"`
	EntityType string          `gorm:"column:entity_type;not null"`
	EntityID   *uuid.UUID      `gorm:"column:entity_id;type:uuid"`
	Details    json.RawMessage `gorm:"column:details;type:jsonb"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

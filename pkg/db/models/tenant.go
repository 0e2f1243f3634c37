package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// Tenant represents a subscribed business. Status is recomputed from the plan
// timestamps; the stored value is a cache refreshed by the reconcile job.
type Tenant struct {
	ID           uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                   `gorm:"column:name;not null;uniqueIndex"`
	OwnerID      uuid.UUID                `gorm:"column:owner_id;type:uuid;not null"`
	Plan         enums.SubscriptionPlan   `gorm:"column:plan;type:text;not null"`
	Status       enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'trial'"`
	Currency     enums.Currency           `gorm:"column:currency;type:text;not null;default:'TRY'"`
	SubscribedAt time.Time                `gorm:"column:subscribed_at;not null"`
	ExpiresAt    time.Time                `gorm:"column:expires_at;not null"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

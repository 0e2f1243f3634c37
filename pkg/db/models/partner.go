package models

import (
	"time"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// Partner is a customer, supplier, or both, owned by a single tenant.
type Partner struct {
	TenantRecord
	Name      string            `gorm:"column:name;not null" json:"name"`
	Kind      enums.PartnerKind `gorm:"column:kind;type:text;not null" json:"kind"`
	Phone     *string           `gorm:"column:phone" json:"phone,omitempty"`
	Email     *string           `gorm:"column:email" json:"email,omitempty"`
	Address   *string           `gorm:"column:address" json:"address,omitempty"`
	Notes     *string           `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

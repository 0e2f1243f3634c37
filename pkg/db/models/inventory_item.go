package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// InventoryItem tracks stock levels and unit cost per tenant.
type InventoryItem struct {
	TenantRecord
	SKU          string          `gorm:"column:sku;not null" json:"sku"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Quantity     int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,2);not null" json:"unit_cost"`
	Currency     enums.Currency  `gorm:"column:currency;type:text;not null" json:"currency"`
	ReorderLevel int             `gorm:"column:reorder_level;not null;default:0" json:"reorder_level"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// InvoiceIn records a purchase invoice received from a supplier.
type InvoiceIn struct {
	TenantRecord
	PartnerID *uuid.UUID          `gorm:"column:partner_id;type:uuid;index" json:"partner_id,omitempty"`
	Number    string              `gorm:"column:number;not null" json:"number"`
	Status    enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	Currency  enums.Currency      `gorm:"column:currency;type:text;not null" json:"currency"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	IssuedAt  time.Time           `gorm:"column:issued_at;not null" json:"issued_at"`
	DueAt     *time.Time          `gorm:"column:due_at" json:"due_at,omitempty"`
	PaidAt    *time.Time          `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Notes     *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InvoiceIn) TableName() string { return "invoices_in" }

// InvoiceOut records a sales invoice issued to a customer.
type InvoiceOut struct {
	TenantRecord
	PartnerID *uuid.UUID          `gorm:"column:partner_id;type:uuid;index" json:"partner_id,omitempty"`
	Number    string              `gorm:"column:number;not null" json:"number"`
	Status    enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	Currency  enums.Currency      `gorm:"column:currency;type:text;not null" json:"currency"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	IssuedAt  time.Time           `gorm:"column:issued_at;not null" json:"issued_at"`
	DueAt     *time.Time          `gorm:"column:due_at" json:"due_at,omitempty"`
	PaidAt    *time.Time          `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Notes     *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InvoiceOut) TableName() string { return "invoices_out" }

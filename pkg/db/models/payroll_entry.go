package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// PayrollEntry is an immutable salary payment line. Entries are created and
// voided by deletion, never edited in place.
type PayrollEntry struct {
	TenantRecord
	EmployeeID  uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	PeriodStart time.Time       `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd   time.Time       `gorm:"column:period_end;not null" json:"period_end"`
	Gross       decimal.Decimal `gorm:"column:gross;type:numeric(14,2);not null" json:"gross"`
	Deductions  decimal.Decimal `gorm:"column:deductions;type:numeric(14,2);not null" json:"deductions"`
	Net         decimal.Decimal `gorm:"column:net;type:numeric(14,2);not null" json:"net"`
	Currency    enums.Currency  `gorm:"column:currency;type:text;not null" json:"currency"`
	PaidAt      *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PayrollEntry) TableName() string { return "payroll_entries" }

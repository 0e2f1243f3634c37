package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// Employee is a staff record kept for payroll purposes.
type Employee struct {
	TenantRecord
	Name      string               `gorm:"column:name;not null" json:"name"`
	Position  string               `gorm:"column:position;not null" json:"position"`
	Status    enums.EmployeeStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	Salary    decimal.Decimal      `gorm:"column:salary;type:numeric(14,2);not null" json:"salary"`
	Currency  enums.Currency       `gorm:"column:currency;type:text;not null" json:"currency"`
	HiredAt   time.Time            `gorm:"column:hired_at;not null" json:"hired_at"`
	Phone     *string              `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

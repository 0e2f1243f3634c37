package models

import "github.com/google/uuid"

// TenantScoped is implemented by every record that belongs to exactly one
// tenant. The records accessor relies on it to stamp and filter tenant_id.
type TenantScoped interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetTenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// TenantRecord carries the identity columns shared by tenant-scoped tables.
// GORM flattens the anonymous embed, so the columns land on the owning table.
type TenantRecord struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"-"`
}

func (r *TenantRecord) GetID() uuid.UUID         { return r.ID }
func (r *TenantRecord) SetID(id uuid.UUID)       { r.ID = id }
func (r *TenantRecord) GetTenantID() uuid.UUID   { return r.TenantID }
func (r *TenantRecord) SetTenantID(id uuid.UUID) { r.TenantID = id }

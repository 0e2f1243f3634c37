package books

import (
	"context"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/permissions"
	"github.com/ibrahem-systems/daftar-backend/internal/records"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// Actor identifies the tenant member performing a mutation, for the trail.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// Scope carries the resolved identity's view into every call: the tenant the
// caller belongs to and the grants they hold. It is built from the resolved
// identity, never from request input.
type Scope struct {
	TenantID uuid.UUID
	Actor    Actor
	Grants   permissions.Grants
}

type row[T any] interface {
	*T
	models.TenantScoped
}

// Resource wraps a tenant-scoped accessor with a write gate and an audit
// trail. Reads are open to every tenant member; mutations require the grant
// the resource is bound to.
type Resource[T any, P row[T]] struct {
	accessor *records.Accessor[T, P]
	trail    auditRecorder
	entity   string
	canWrite func(permissions.Grants) bool
	noUpdate bool
}

func newResource[T any, P row[T]](client *db.Client, logg *logger.Logger, cfg config.RecordsConfig, trail auditRecorder, entity string, canWrite func(permissions.Grants) bool) *Resource[T, P] {
	return &Resource[T, P]{
		accessor: records.NewAccessor[T, P](client, logg, cfg),
		trail:    trail,
		entity:   entity,
		canWrite: canWrite,
	}
}

// List returns the tenant's rows, newest first.
func (r *Resource[T, P]) List(ctx context.Context, scope Scope) []T {
	return r.accessor.List(ctx, scope.TenantID)
}

// Get fetches one row within the tenant scope.
func (r *Resource[T, P]) Get(ctx context.Context, scope Scope, id uuid.UUID) (P, error) {
	return r.accessor.Get(ctx, scope.TenantID, id)
}

// Create inserts a row after checking the write gate and records the mutation.
func (r *Resource[T, P]) Create(ctx context.Context, scope Scope, record P) (P, error) {
	if !r.canWrite(scope.Grants) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	created, err := r.accessor.Create(ctx, scope.TenantID, record)
	if err != nil {
		return nil, err
	}
	r.record(ctx, scope, "create", created.GetID())
	return created, nil
}

// Update rewrites a row in place. Immutable resources reject it outright.
func (r *Resource[T, P]) Update(ctx context.Context, scope Scope, record P) (P, error) {
	if r.noUpdate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, r.entity+" entries cannot be edited")
	}
	if !r.canWrite(scope.Grants) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	updated, err := r.accessor.Update(ctx, scope.TenantID, record)
	if err != nil {
		return nil, err
	}
	r.record(ctx, scope, "update", updated.GetID())
	return updated, nil
}

// Delete removes a row within the tenant scope.
func (r *Resource[T, P]) Delete(ctx context.Context, scope Scope, id uuid.UUID) error {
	if !r.canWrite(scope.Grants) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if err := r.accessor.Delete(ctx, scope.TenantID, id); err != nil {
		return err
	}
	r.record(ctx, scope, "delete", id)
	return nil
}

func (r *Resource[T, P]) record(ctx context.Context, scope Scope, verb string, id uuid.UUID) {
	if r.trail == nil {
		return
	}
	tenantID := scope.TenantID
	entityID := id
	entry := audit.Entry{
		TenantID:   &tenantID,
		ActorEmail: scope.Actor.Email,
		Action:     r.entity + "." + verb,
		EntityType: r.entity,
		EntityID:   &entityID,
	}
	if scope.Actor.ID != uuid.Nil {
		actorID := scope.Actor.ID
		entry.ActorID = &actorID
	}
	r.trail.Record(ctx, entry)
}

// Service bundles the typed record resources that make up a tenant's books.
// Invoice-side records gate on the invoice grant, stock on the stock grant;
// payroll entries are append-only.
type Service struct {
	Partners    *Resource[models.Partner, *models.Partner]
	InvoicesIn  *Resource[models.InvoiceIn, *models.InvoiceIn]
	InvoicesOut *Resource[models.InvoiceOut, *models.InvoiceOut]
	Inventory   *Resource[models.InventoryItem, *models.InventoryItem]
	Employees   *Resource[models.Employee, *models.Employee]
	Payroll     *Resource[models.PayrollEntry, *models.PayrollEntry]
}

// NewService wires one resource per record table over the shared connection.
func NewService(client *db.Client, logg *logger.Logger, cfg config.RecordsConfig, trail auditRecorder) *Service {
	invoiceGrant := func(g permissions.Grants) bool { return g.ManageInvoices }
	stockGrant := func(g permissions.Grants) bool { return g.ManageStock }

	svc := &Service{
		Partners:    newResource[models.Partner](client, logg, cfg, trail, "partner", invoiceGrant),
		InvoicesIn:  newResource[models.InvoiceIn](client, logg, cfg, trail, "invoice_in", invoiceGrant),
		InvoicesOut: newResource[models.InvoiceOut](client, logg, cfg, trail, "invoice_out", invoiceGrant),
		Inventory:   newResource[models.InventoryItem](client, logg, cfg, trail, "inventory_item", stockGrant),
		Employees:   newResource[models.Employee](client, logg, cfg, trail, "employee", invoiceGrant),
		Payroll:     newResource[models.PayrollEntry](client, logg, cfg, trail, "payroll_entry", invoiceGrant),
	}
	svc.Payroll.noUpdate = true
	return svc
}

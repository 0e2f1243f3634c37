package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

// record constrains the accessor to pointer types that expose tenant scoping.
type record[T any] interface {
	*T
	models.TenantScoped
}

// Accessor provides tenant-scoped CRUD over a single table. Every query is
// filtered by tenant_id so a caller can never reach another tenant's rows,
// regardless of what IDs it supplies.
type Accessor[T any, P record[T]] struct {
	db          *gorm.DB
	logg        *logger.Logger
	listTimeout time.Duration
}

// NewAccessor builds an accessor bound to the shared connection.
func NewAccessor[T any, P record[T]](client *db.Client, logg *logger.Logger, cfg config.RecordsConfig) *Accessor[T, P] {
	timeout := cfg.ListTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Accessor[T, P]{
		db:          client.DB(),
		logg:        logg,
		listTimeout: timeout,
	}
}

// List returns every row owned by the tenant, newest first. Read paths degrade
// to an empty slice on failure so one broken table cannot take down a whole
// dashboard; the error is logged and surfaced through metrics on the DB side.
func (a *Accessor[T, P]) List(ctx context.Context, tenantID uuid.UUID) []T {
	if tenantID == uuid.Nil {
		a.warn(ctx, "list called without tenant id", nil)
		return []T{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.listTimeout)
	defer cancel()

	var rows []T
	err := a.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		a.warn(ctx, "list degraded to empty", err)
		return []T{}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows
}

// Get loads a single row by id within the tenant.
func (a *Accessor[T, P]) Get(ctx context.Context, tenantID, id uuid.UUID) (P, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}

	var row T
	err := a.db.WithContext(ctx).
		First(&row, "id = ? AND tenant_id = ?", id, tenantID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading record")
	}
	return P(&row), nil
}

// Create inserts the row, stamping tenant_id from the caller's scope. Any
// tenant_id already present on the value is overwritten.
func (a *Accessor[T, P]) Create(ctx context.Context, tenantID uuid.UUID, row P) (P, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}

	row.SetTenantID(tenantID)
	if row.GetID() == uuid.Nil {
		row.SetID(uuid.New())
	}

	if err := a.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "record already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating record")
	}
	return row, nil
}

// Update rewrites the row matched by both id and tenant_id. A row that exists
// under a different tenant is indistinguishable from a missing one.
func (a *Accessor[T, P]) Update(ctx context.Context, tenantID uuid.UUID, row P) (P, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}
	if row.GetID() == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing record id")
	}

	row.SetTenantID(tenantID)
	res := a.db.WithContext(ctx).
		Model(row).
		Where("tenant_id = ?", tenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(row)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating record")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return row, nil
}

// Delete removes the row matched by both id and tenant_id. Deleting a row that
// does not exist in the tenant fails with not-found rather than silently
// succeeding, so clients learn when they hold a stale id.
func (a *Accessor[T, P]) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing tenant id")
	}

	res := a.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(P(new(T)))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting record")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return nil
}

func (a *Accessor[T, P]) warn(ctx context.Context, msg string, err error) {
	if a.logg == nil {
		return
	}
	if err != nil {
		ctx = a.logg.WithField(ctx, "error", err.Error())
	}
	a.logg.Warn(ctx, msg)
}

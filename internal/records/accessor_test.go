package records

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

func newTestAccessor(t *testing.T, migrate bool) *Accessor[models.Partner, *models.Partner] {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if migrate {
		if err := conn.AutoMigrate(&models.Partner{}); err != nil {
			t.Fatalf("failed to migrate sqlite: %v", err)
		}
	}
	return NewAccessor[models.Partner, *models.Partner](db.NewWithConn(conn), nil, config.RecordsConfig{})
}

func newPartner(name string) *models.Partner {
	return &models.Partner{
		Name: name,
		Kind: "customer",
	}
}

func TestAccessorCreateStampsTenant(t *testing.T) {
	acc := newTestAccessor(t, true)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	row := newPartner("Acme")
	row.TenantID = tenantB // caller-supplied scope must win
	created, err := acc.Create(ctx, tenantA, row)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TenantID != tenantA {
		t.Fatalf("expected tenant_id stamped to %s, got %s", tenantA, created.TenantID)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
}

func TestAccessorIsolatesTenants(t *testing.T) {
	acc := newTestAccessor(t, true)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	created, err := acc.Create(ctx, tenantA, newPartner("Acme"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := acc.Create(ctx, tenantB, newPartner("Globex")); err != nil {
		t.Fatalf("create second tenant: %v", err)
	}

	// reads
	if rows := acc.List(ctx, tenantA); len(rows) != 1 || rows[0].Name != "Acme" {
		t.Fatalf("tenant A should see exactly its own row, got %d", len(rows))
	}
	if _, err := acc.Get(ctx, tenantB, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant get should report not found, got %v", err)
	}

	// writes
	created.Name = "Hijacked"
	if _, err := acc.Update(ctx, tenantB, created); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant update should report not found, got %v", err)
	}
	if err := acc.Delete(ctx, tenantB, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant delete should report not found, got %v", err)
	}

	// row untouched
	got, err := acc.Get(ctx, tenantA, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("expected row untouched, got name %q", got.Name)
	}
}

func TestAccessorUpdateRewritesRow(t *testing.T) {
	acc := newTestAccessor(t, true)
	ctx := context.Background()
	tenant := uuid.New()

	created, err := acc.Create(ctx, tenant, newPartner("Acme"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Name = "Acme Ltd"
	phone := "+90 555 000 0000"
	created.Phone = &phone
	updated, err := acc.Update(ctx, tenant, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Acme Ltd" {
		t.Fatalf("unexpected name %q", updated.Name)
	}

	// updating with unchanged values still succeeds
	if _, err := acc.Update(ctx, tenant, updated); err != nil {
		t.Fatalf("idempotent update: %v", err)
	}

	got, err := acc.Get(ctx, tenant, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Fatal("expected phone persisted")
	}
}

func TestAccessorDeleteRemovesRow(t *testing.T) {
	acc := newTestAccessor(t, true)
	ctx := context.Background()
	tenant := uuid.New()

	created, err := acc.Create(ctx, tenant, newPartner("Acme"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := acc.Delete(ctx, tenant, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := acc.Delete(ctx, tenant, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("double delete should report not found, got %v", err)
	}
}

func TestAccessorListDegradesToEmpty(t *testing.T) {
	// table never migrated: queries fail, reads must degrade
	acc := newTestAccessor(t, false)
	rows := acc.List(context.Background(), uuid.New())
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty slice, got %v", rows)
	}
}

func TestAccessorRejectsMissingTenant(t *testing.T) {
	acc := newTestAccessor(t, true)
	ctx := context.Background()

	if rows := acc.List(ctx, uuid.Nil); len(rows) != 0 {
		t.Fatalf("expected empty list for nil tenant, got %d", len(rows))
	}
	if _, err := acc.Create(ctx, uuid.Nil, newPartner("Acme")); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := acc.Get(ctx, uuid.Nil, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := acc.Delete(ctx, uuid.Nil, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

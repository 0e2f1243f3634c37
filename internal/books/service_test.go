package books

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/internal/permissions"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

type stubTrail struct {
	entries []audit.Entry
}

func (s *stubTrail) Record(ctx context.Context, e audit.Entry) {
	s.entries = append(s.entries, e)
}

func newTestService(t *testing.T) (*Service, *stubTrail) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Partner{},
		&models.InvoiceIn{},
		&models.InvoiceOut{},
		&models.InventoryItem{},
		&models.Employee{},
		&models.PayrollEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	trail := &stubTrail{}
	return NewService(db.NewWithConn(conn), nil, config.RecordsConfig{}, trail), trail
}

func ownerScope(tenantID uuid.UUID) Scope {
	return Scope{
		TenantID: tenantID,
		Actor:    Actor{ID: uuid.New(), Email: "owner@acme.example"},
		Grants: permissions.Grants{
			ManageUsers:    true,
			ManageInvoices: true,
			ManageStock:    true,
			ViewBooks:      true,
		},
	}
}

func readOnlyScope(tenantID uuid.UUID) Scope {
	return Scope{
		TenantID: tenantID,
		Actor:    Actor{ID: uuid.New(), Email: "clerk@acme.example"},
		Grants:   permissions.Grants{ViewBooks: true},
	}
}

func TestResourceCreateRecordsTrail(t *testing.T) {
	svc, trail := newTestService(t)
	scope := ownerScope(uuid.New())
	ctx := context.Background()

	created, err := svc.Partners.Create(ctx, scope, &models.Partner{
		Name: "Acme Supplies",
		Kind: enums.PartnerKindSupplier,
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	if created.TenantID != scope.TenantID {
		t.Fatalf("expected tenant stamp %s, got %s", scope.TenantID, created.TenantID)
	}

	if len(trail.entries) != 1 {
		t.Fatalf("expected one trail entry, got %d", len(trail.entries))
	}
	entry := trail.entries[0]
	if entry.Action != "partner.create" || entry.EntityType != "partner" {
		t.Fatalf("unexpected trail entry %+v", entry)
	}
	if entry.TenantID == nil || *entry.TenantID != scope.TenantID {
		t.Fatalf("expected trail scoped to tenant, got %+v", entry.TenantID)
	}
	if entry.EntityID == nil || *entry.EntityID != created.ID {
		t.Fatalf("expected trail entity id %s, got %v", created.ID, entry.EntityID)
	}
}

func TestResourceWritesRequireGrant(t *testing.T) {
	svc, trail := newTestService(t)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Inventory.Create(ctx, readOnlyScope(tenantID), &models.InventoryItem{
		SKU:      "SKU-1",
		Name:     "Widget",
		UnitCost: decimal.NewFromInt(3),
		Currency: enums.CurrencyTRY,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden without stock grant, got %v", err)
	}

	item, err := svc.Inventory.Create(ctx, ownerScope(tenantID), &models.InventoryItem{
		SKU:      "SKU-1",
		Name:     "Widget",
		UnitCost: decimal.NewFromInt(3),
		Currency: enums.CurrencyTRY,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := svc.Inventory.Delete(ctx, readOnlyScope(tenantID), item.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden delete, got %v", err)
	}

	// Reads stay open without any write grant.
	if got := svc.Inventory.List(ctx, readOnlyScope(tenantID)); len(got) != 1 {
		t.Fatalf("expected read access to one item, got %d", len(got))
	}
	if _, err := svc.Inventory.Get(ctx, readOnlyScope(tenantID), item.ID); err != nil {
		t.Fatalf("get: %v", err)
	}

	// Only the successful create hit the trail.
	if len(trail.entries) != 1 {
		t.Fatalf("expected one trail entry, got %d", len(trail.entries))
	}
}

func TestResourceStockGrantSeparateFromInvoices(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := uuid.New()
	ctx := context.Background()

	stockOnly := Scope{
		TenantID: tenantID,
		Actor:    Actor{ID: uuid.New(), Email: "warehouse@acme.example"},
		Grants:   permissions.Grants{ManageStock: true, ViewBooks: true},
	}

	if _, err := svc.Inventory.Create(ctx, stockOnly, &models.InventoryItem{
		SKU:      "SKU-9",
		Name:     "Crate",
		UnitCost: decimal.NewFromInt(12),
		Currency: enums.CurrencyTRY,
	}); err != nil {
		t.Fatalf("stock grant should cover inventory: %v", err)
	}

	_, err := svc.InvoicesOut.Create(ctx, stockOnly, &models.InvoiceOut{
		Number:   "INV-1",
		Status:   enums.InvoiceStatusDraft,
		Currency: enums.CurrencyTRY,
		Amount:   decimal.NewFromInt(100),
		IssuedAt: time.Now().UTC(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("stock grant must not cover invoices, got %v", err)
	}
}

func TestResourceUpdateIsTenantScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	scopeA := ownerScope(uuid.New())
	scopeB := ownerScope(uuid.New())

	created, err := svc.Partners.Create(ctx, scopeA, &models.Partner{
		Name: "Acme Supplies",
		Kind: enums.PartnerKindSupplier,
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}

	created.Name = "Acme Wholesale"
	if _, err := svc.Partners.Update(ctx, scopeA, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Partners.Get(ctx, scopeA, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme Wholesale" {
		t.Fatalf("expected renamed partner, got %q", got.Name)
	}

	// Another tenant cannot reach the row even with full grants.
	hijack := &models.Partner{Name: "Hijacked", Kind: enums.PartnerKindSupplier}
	hijack.ID = created.ID
	_, err = svc.Partners.Update(ctx, scopeB, hijack)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}

func TestPayrollEntriesAreAppendOnly(t *testing.T) {
	svc, trail := newTestService(t)
	scope := ownerScope(uuid.New())
	ctx := context.Background()

	entry, err := svc.Payroll.Create(ctx, scope, &models.PayrollEntry{
		EmployeeID:  uuid.New(),
		PeriodStart: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC),
		Gross:       decimal.NewFromInt(1000),
		Deductions:  decimal.NewFromInt(150),
		Net:         decimal.NewFromInt(850),
		Currency:    enums.CurrencyTRY,
	})
	if err != nil {
		t.Fatalf("create payroll entry: %v", err)
	}

	entry.Net = decimal.NewFromInt(900)
	_, err = svc.Payroll.Update(ctx, scope, entry)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for payroll edit, got %v", err)
	}

	// Voiding by deletion still works.
	if err := svc.Payroll.Delete(ctx, scope, entry.ID); err != nil {
		t.Fatalf("delete payroll entry: %v", err)
	}
	if len(trail.entries) != 2 {
		t.Fatalf("expected create+delete trail entries, got %d", len(trail.entries))
	}
	if trail.entries[1].Action != "payroll_entry.delete" {
		t.Fatalf("unexpected trail action %q", trail.entries[1].Action)
	}
}

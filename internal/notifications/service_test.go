package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return NewService(conn)
}

func TestPushAndListScopedToTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	if err := svc.Push(ctx, tenantA, enums.NotificationKindSubscriptionExpiring, "5 days left", 5); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := svc.Push(ctx, tenantB, enums.NotificationKindSubscriptionExpired, "plan lapsed", -1); err != nil {
		t.Fatalf("push: %v", err)
	}

	rows, err := svc.List(ctx, tenantA, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one notification for tenant A, got %d", len(rows))
	}
	if rows[0].Kind != enums.NotificationKindSubscriptionExpiring || rows[0].DaysRemaining != 5 {
		t.Fatalf("unexpected notification %+v", rows[0])
	}
}

func TestMarkReadIsIdempotentAndScoped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	if err := svc.Push(ctx, tenantA, enums.NotificationKindSubscriptionExpiring, "3 days left", 3); err != nil {
		t.Fatalf("push: %v", err)
	}
	rows, err := svc.List(ctx, tenantA, true)
	if err != nil || len(rows) != 1 {
		t.Fatalf("list unread: rows=%d err=%v", len(rows), err)
	}
	id := rows[0].ID

	if err := svc.MarkRead(ctx, tenantA, id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Second call is a no-op, not an error.
	if err := svc.MarkRead(ctx, tenantA, id); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}

	unread, err := svc.List(ctx, tenantA, true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread rows, got %d", len(unread))
	}

	// Another tenant cannot touch the row.
	err = svc.MarkRead(ctx, tenantB, id)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}

func TestHasRecentWindow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	if err := svc.Push(ctx, tenantID, enums.NotificationKindSubscriptionExpiring, "7 days left", 7); err != nil {
		t.Fatalf("push: %v", err)
	}

	recent, err := svc.HasRecent(ctx, tenantID, enums.NotificationKindSubscriptionExpiring, time.Hour)
	if err != nil {
		t.Fatalf("has recent: %v", err)
	}
	if !recent {
		t.Fatalf("expected fresh notification to count as recent")
	}

	recent, err = svc.HasRecent(ctx, tenantID, enums.NotificationKindSubscriptionExpired, time.Hour)
	if err != nil {
		t.Fatalf("has recent: %v", err)
	}
	if recent {
		t.Fatalf("different kind must not count")
	}
}

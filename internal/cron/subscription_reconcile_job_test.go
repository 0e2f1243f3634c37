package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type stubTenantRepo struct {
	rows     []models.Tenant
	listErr  error
	statuses map[uuid.UUID]enums.SubscriptionStatus
}

func (s *stubTenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rows, nil
}

func (s *stubTenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	if s.statuses == nil {
		s.statuses = map[uuid.UUID]enums.SubscriptionStatus{}
	}
	s.statuses[id] = status
	return nil
}

type pushedNotification struct {
	tenantID uuid.UUID
	kind     enums.NotificationKind
	days     int
}

type stubNotifier struct {
	recent map[enums.NotificationKind]bool
	pushed []pushedNotification
}

func (s *stubNotifier) Push(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, message string, daysRemaining int) error {
	s.pushed = append(s.pushed, pushedNotification{tenantID: tenantID, kind: kind, days: daysRemaining})
	return nil
}

func (s *stubNotifier) HasRecent(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, window time.Duration) (bool, error) {
	return s.recent[kind], nil
}

func newReconcileJob(t *testing.T, repo *stubTenantRepo, notifier *stubNotifier, now time.Time) Job {
	t.Helper()
	job, err := NewSubscriptionReconcileJob(SubscriptionReconcileJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Tenants:  repo,
		Notifier: notifier,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job
}

func tenantRow(plan enums.SubscriptionPlan, status enums.SubscriptionStatus, expiresAt time.Time) models.Tenant {
	return models.Tenant{
		ID:        uuid.New(),
		Name:      "t-" + uuid.NewString()[:8],
		Plan:      plan,
		Status:    status,
		ExpiresAt: expiresAt,
	}
}

func TestReconcileRefreshesDriftedStatus(t *testing.T) {
	now := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	lapsed := tenantRow(enums.SubscriptionPlanMonthly, enums.SubscriptionStatusActive, now.Add(-24*time.Hour))
	current := tenantRow(enums.SubscriptionPlanYearly, enums.SubscriptionStatusActive, now.Add(200*24*time.Hour))
	repo := &stubTenantRepo{rows: []models.Tenant{lapsed, current}}
	notifier := &stubNotifier{}

	if err := newReconcileJob(t, repo, notifier, now).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := repo.statuses[lapsed.ID]; got != enums.SubscriptionStatusExpired {
		t.Fatalf("expected lapsed tenant marked expired, got %q", got)
	}
	if _, ok := repo.statuses[current.ID]; ok {
		t.Fatalf("healthy tenant must not be rewritten")
	}

	if len(notifier.pushed) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.pushed))
	}
	push := notifier.pushed[0]
	if push.tenantID != lapsed.ID || push.kind != enums.NotificationKindSubscriptionExpired {
		t.Fatalf("unexpected push %+v", push)
	}
}

func TestReconcilePushesAdvisoryInsideWarnWindow(t *testing.T) {
	now := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	closing := tenantRow(enums.SubscriptionPlanMonthly, enums.SubscriptionStatusActive, now.Add(5*24*time.Hour))
	repo := &stubTenantRepo{rows: []models.Tenant{closing}}
	notifier := &stubNotifier{}

	if err := newReconcileJob(t, repo, notifier, now).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(notifier.pushed) != 1 {
		t.Fatalf("expected advisory push, got %d", len(notifier.pushed))
	}
	push := notifier.pushed[0]
	if push.kind != enums.NotificationKindSubscriptionExpiring || push.days != 5 {
		t.Fatalf("unexpected push %+v", push)
	}
	// Status already active; no cache rewrite.
	if len(repo.statuses) != 0 {
		t.Fatalf("expected no status updates, got %+v", repo.statuses)
	}
}

func TestReconcileDedupesRecentNotifications(t *testing.T) {
	now := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	closing := tenantRow(enums.SubscriptionPlanMonthly, enums.SubscriptionStatusActive, now.Add(3*24*time.Hour))
	repo := &stubTenantRepo{rows: []models.Tenant{closing}}
	notifier := &stubNotifier{recent: map[enums.NotificationKind]bool{
		enums.NotificationKindSubscriptionExpiring: true,
	}}

	if err := newReconcileJob(t, repo, notifier, now).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notifier.pushed) != 0 {
		t.Fatalf("expected dedupe to suppress push, got %+v", notifier.pushed)
	}
}

func TestReconcileAggregatesPerTenantFailures(t *testing.T) {
	now := time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC)
	repo := &stubTenantRepo{listErr: fmt.Errorf("connection reset")}
	if err := newReconcileJob(t, repo, &stubNotifier{}, now).Run(context.Background()); err == nil {
		t.Fatalf("expected list failure to propagate")
	}
}

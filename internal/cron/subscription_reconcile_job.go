package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ibrahem-systems/daftar-backend/internal/subscriptions"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

const advisoryDedupeWindow = 24 * time.Hour

type tenantReconcileRepo interface {
	List(ctx context.Context) ([]models.Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error
}

type notifier interface {
	Push(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, message string, daysRemaining int) error
	HasRecent(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, window time.Duration) (bool, error)
}

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger        *logger.Logger
	Tenants       tenantReconcileRepo
	Notifier      notifier
	WarnDays      int
	ExpiredDedupe time.Duration
	Now           func() time.Time
}

// NewSubscriptionReconcileJob builds the reconciliation cron job. The stored
// status column is only a cache; this job re-derives it from the plan
// timestamps and refreshes both the cache and the owner's notifications.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	expiredDedupe := params.ExpiredDedupe
	if expiredDedupe <= 0 {
		expiredDedupe = 7 * 24 * time.Hour
	}
	return &subscriptionReconcileJob{
		logg:          params.Logger,
		tenants:       params.Tenants,
		notifier:      params.Notifier,
		warnDays:      params.WarnDays,
		expiredDedupe: expiredDedupe,
		now:           now,
	}, nil
}

type subscriptionReconcileJob struct {
	logg          *logger.Logger
	tenants       tenantReconcileRepo
	notifier      notifier
	warnDays      int
	expiredDedupe time.Duration
	now           func() time.Time
}

func (j *subscriptionReconcileJob) Name() string { return "subscription-reconcile" }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	rows, err := j.tenants.List(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	now := j.now().UTC()
	var errs error
	scanned := len(rows)
	drifted := 0
	notified := 0
	for i := range rows {
		tenant := &rows[i]
		updated, pushed, err := j.reconcileTenant(ctx, tenant, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %s: %w", tenant.ID, err))
			continue
		}
		if updated {
			drifted++
		}
		if pushed {
			notified++
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":  scanned,
		"drifted":  drifted,
		"notified": notified,
	})
	j.logg.Info(reportCtx, "subscription reconcile loop complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcileTenant(ctx context.Context, tenant *models.Tenant, now time.Time) (updated, pushed bool, err error) {
	snapshot := subscriptions.Evaluate(tenant.Plan, tenant.ExpiresAt, now, j.warnDays)

	if snapshot.Status != tenant.Status {
		if err := j.tenants.UpdateStatus(ctx, tenant.ID, snapshot.Status); err != nil {
			return false, false, fmt.Errorf("update status: %w", err)
		}
		updated = true
	}

	switch {
	case snapshot.Expired():
		pushed, err = j.pushOnce(ctx, tenant.ID, enums.NotificationKindSubscriptionExpired,
			"Your subscription has expired. Renew to regain full access.",
			snapshot.DaysRemaining, j.expiredDedupe)
	case snapshot.Advisory:
		pushed, err = j.pushOnce(ctx, tenant.ID, enums.NotificationKindSubscriptionExpiring,
			fmt.Sprintf("Your subscription expires in %d day(s). Renew to avoid interruption.", snapshot.DaysRemaining),
			snapshot.DaysRemaining, advisoryDedupeWindow)
	}
	return updated, pushed, err
}

func (j *subscriptionReconcileJob) pushOnce(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, message string, days int, window time.Duration) (bool, error) {
	recent, err := j.notifier.HasRecent(ctx, tenantID, kind, window)
	if err != nil {
		return false, fmt.Errorf("check recent notifications: %w", err)
	}
	if recent {
		return false, nil
	}
	if err := j.notifier.Push(ctx, tenantID, kind, message, days); err != nil {
		return false, fmt.Errorf("push notification: %w", err)
	}
	return true, nil
}

package subscriptions

import (
	"math"
	"time"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// DefaultWarnDays is how close to expiry a subscription gets flagged advisory.
const DefaultWarnDays = 7

// Snapshot is the computed subscription state for a tenant at a point in
// time. The stored status column is only a cache of this; code that needs the
// truth calls Evaluate.
type Snapshot struct {
	Status        enums.SubscriptionStatus
	ExpiresAt     time.Time
	DaysRemaining int
	Advisory      bool
}

// Expired reports whether the snapshot is past its window.
func (s Snapshot) Expired() bool {
	return s.Status == enums.SubscriptionStatusExpired
}

// Evaluate computes the subscription state from the persisted plan fields.
// DaysRemaining rounds up, so a subscription expiring later today reports 1,
// and goes negative once lapsed. warnDays <= 0 falls back to DefaultWarnDays.
func Evaluate(plan enums.SubscriptionPlan, expiresAt, now time.Time, warnDays int) Snapshot {
	if warnDays <= 0 {
		warnDays = DefaultWarnDays
	}

	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))

	status := enums.SubscriptionStatusActive
	if plan == enums.SubscriptionPlanTrial {
		status = enums.SubscriptionStatusTrial
	}
	if days <= 0 {
		status = enums.SubscriptionStatusExpired
	}

	return Snapshot{
		Status:        status,
		ExpiresAt:     expiresAt,
		DaysRemaining: days,
		Advisory:      days > 0 && days <= warnDays,
	}
}

package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/internal/subscriptions"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// TenantDTO is the admin-facing tenant shape with its computed subscription
// snapshot attached.
type TenantDTO struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	Plan          enums.SubscriptionPlan   `json:"plan"`
	Status        enums.SubscriptionStatus `json:"status"`
	Currency      enums.Currency           `json:"currency"`
	SubscribedAt  time.Time                `json:"subscribed_at"`
	ExpiresAt     time.Time                `json:"expires_at"`
	DaysRemaining int                      `json:"days_remaining"`
	Advisory      bool                     `json:"advisory"`
	OwnerID       uuid.UUID                `json:"owner_id"`
	OwnerEmail    string                   `json:"owner_email,omitempty"`
	OwnerName     string                   `json:"owner_name,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// OrphanOwnerDTO describes an owner account left behind by a failed
// provisioning run.
type OrphanOwnerDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func fromModel(t *models.Tenant, owner *models.User, now time.Time) *TenantDTO {
	snap := subscriptions.Evaluate(t.Plan, t.ExpiresAt, now, 0)
	dto := &TenantDTO{
		ID:            t.ID,
		Name:          t.Name,
		Plan:          t.Plan,
		Status:        snap.Status,
		Currency:      t.Currency,
		SubscribedAt:  t.SubscribedAt,
		ExpiresAt:     t.ExpiresAt,
		DaysRemaining: snap.DaysRemaining,
		Advisory:      snap.Advisory,
		OwnerID:       t.OwnerID,
		CreatedAt:     t.CreatedAt,
	}
	if owner != nil {
		dto.OwnerEmail = owner.Email
		dto.OwnerName = owner.Name
	}
	return dto
}

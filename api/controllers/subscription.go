package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/api/middleware"
	"github.com/ibrahem-systems/daftar-backend/api/responses"
	"github.com/ibrahem-systems/daftar-backend/internal/auth"
	"github.com/ibrahem-systems/daftar-backend/internal/subscriptions"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
)

type subscriptionStatusResponse struct {
	Plan          enums.SubscriptionPlan   `json:"plan"`
	Status        enums.SubscriptionStatus `json:"status"`
	ExpiresAt     time.Time                `json:"expires_at"`
	DaysRemaining int                      `json:"days_remaining"`
	Advisory      bool                     `json:"advisory"`
}

type planResponse struct {
	Name     enums.SubscriptionPlan `json:"name"`
	Days     int                    `json:"days"`
	Price    decimal.Decimal        `json:"price"`
	Currency enums.Currency         `json:"currency"`
}

// SubscriptionStatus reports the caller's computed subscription state. The
// snapshot comes from the resolved identity, so it is already current.
func SubscriptionStatus(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == nil || identity.Kind != auth.IdentityTenantUser || identity.Tenant == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "no business is linked to this account"))
			return
		}
		responses.WriteSuccess(w, subscriptionStatusResponse{
			Plan:          identity.Tenant.Plan,
			Status:        identity.Subscription.Status,
			ExpiresAt:     identity.Subscription.ExpiresAt,
			DaysRemaining: identity.Subscription.DaysRemaining,
			Advisory:      identity.Subscription.Advisory,
		})
	}
}

// SubscriptionPlans lists the purchasable plan catalog.
func SubscriptionPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans := subscriptions.Plans()
		out := make([]planResponse, 0, len(plans))
		for _, p := range plans {
			out = append(out, planResponse{
				Name:     p.Name,
				Days:     p.Days,
				Price:    p.Price,
				Currency: p.Currency,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

package subscriptions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

// Plan describes a purchasable subscription tier. Prices are flat USD amounts
// collected out of band; the backend only tracks entitlement windows.
type Plan struct {
	Name     enums.SubscriptionPlan
	Days     int
	Price    decimal.Decimal
	Currency enums.Currency
}

var plansByName = map[enums.SubscriptionPlan]Plan{
	enums.SubscriptionPlanTrial: {
		Name:     enums.SubscriptionPlanTrial,
		Days:     14,
		Price:    decimal.Zero,
		Currency: enums.CurrencyUSD,
	},
	enums.SubscriptionPlanMonthly: {
		Name:     enums.SubscriptionPlanMonthly,
		Days:     30,
		Price:    decimal.NewFromInt(5),
		Currency: enums.CurrencyUSD,
	},
	enums.SubscriptionPlanSixMonths: {
		Name:     enums.SubscriptionPlanSixMonths,
		Days:     180,
		Price:    decimal.NewFromInt(30),
		Currency: enums.CurrencyUSD,
	},
	enums.SubscriptionPlanYearly: {
		Name:     enums.SubscriptionPlanYearly,
		Days:     365,
		Price:    decimal.NewFromInt(40),
		Currency: enums.CurrencyUSD,
	},
}

// PlanFor resolves the plan definition for the given name.
func PlanFor(name enums.SubscriptionPlan) (Plan, error) {
	plan, ok := plansByName[name]
	if !ok {
		return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown subscription plan")
	}
	return plan, nil
}

// Plans returns every purchasable plan, trial included.
func Plans() []Plan {
	out := make([]Plan, 0, len(plansByName))
	for _, name := range []enums.SubscriptionPlan{
		enums.SubscriptionPlanTrial,
		enums.SubscriptionPlanMonthly,
		enums.SubscriptionPlanSixMonths,
		enums.SubscriptionPlanYearly,
	} {
		out = append(out, plansByName[name])
	}
	return out
}

// Extend returns the expiry that results from adding the plan's window to
// from. Extensions compound: extending before expiry adds to the remaining
// time rather than resetting it.
func Extend(from time.Time, name enums.SubscriptionPlan) (time.Time, error) {
	plan, err := PlanFor(name)
	if err != nil {
		return time.Time{}, err
	}
	return from.Add(time.Duration(plan.Days) * 24 * time.Hour), nil
}

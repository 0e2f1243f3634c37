package enums

import "fmt"

// SubscriptionPlan identifies a billing plan tier.
type SubscriptionPlan string

const (
	SubscriptionPlanTrial     SubscriptionPlan = "trial"
	SubscriptionPlanMonthly   SubscriptionPlan = "monthly"
	SubscriptionPlanSixMonths SubscriptionPlan = "6months"
	SubscriptionPlanYearly    SubscriptionPlan = "yearly"
)

var validSubscriptionPlans = []SubscriptionPlan{
	SubscriptionPlanTrial,
	SubscriptionPlanMonthly,
	SubscriptionPlanSixMonths,
	SubscriptionPlanYearly,
}

// String implements fmt.Stringer.
func (p SubscriptionPlan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SubscriptionPlan.
func (p SubscriptionPlan) IsValid() bool {
	for _, candidate := range validSubscriptionPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSubscriptionPlan converts raw input into a SubscriptionPlan.
func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	for _, candidate := range validSubscriptionPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription plan %q", value)
}

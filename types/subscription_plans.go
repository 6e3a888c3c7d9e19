package types

import "strings"

type SubscriptionPlan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	PeriodDays int    `json:"period_days"`
}

// Plan catalog for simulated billing. Prices are display-only; no charge is
// ever made.
func GetSubscriptionPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{ID: "monthly", Name: "Monthly", PriceCents: 500, PeriodDays: 30},
		{ID: "yearly", Name: "Yearly", PriceCents: 4800, PeriodDays: 365},
	}
}

func FindSubscriptionPlan(id string) (SubscriptionPlan, bool) {
	for _, plan := range GetSubscriptionPlans() {
		if plan.ID == strings.ToLower(id) {
			return plan, true
		}
	}
	return SubscriptionPlan{}, false
}

package order

import "github.com/amirulizwan/KedaiKit/app/models"

// Plan price table in RM. Server-authoritative: checkout accepts only a plan
// selection, never a price. Keep in sync with the storefront pricing page.
var pricing = map[string]float64{
	models.PlanFree:       19, // Beginner plan
	models.PlanPro:        59,
	models.PlanEnterprise: 99,
}

// PriceFor returns the persisted amount for a plan. Unknown plans price at 0;
// plan validity is enforced at the checkout boundary.
func PriceFor(planType string) float64 {
	return pricing[planType]
}

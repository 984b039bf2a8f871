package domain

import "github.com/shopspring/decimal"

type PlanLabel string

const (
	PlanFast     PlanLabel = "Fast"
	PlanBalanced PlanLabel = "Balanced"
	PlanExtended PlanLabel = "Extended"
)

type Plan struct {
	Label         PlanLabel           `json:"label"`
	TenureMonths  int                 `json:"tenure_months"`
	EMI           decimal.Decimal     `json:"emi"`
	TotalInterest decimal.Decimal     `json:"total_interest"`
	TotalPayment  decimal.Decimal     `json:"total_payment"`
	Recommended   bool                `json:"recommended"`
	DTI           decimal.NullDecimal `json:"dti"`
}

// GoldilocksOptions holds exactly three plans ordered by tenure:
// Fast, Balanced, Extended.
type GoldilocksOptions [3]Plan

// ByTenure finds the presented plan with the given tenure.
func (o GoldilocksOptions) ByTenure(months int) (Plan, bool) {
	for _, p := range o {
		if p.TenureMonths == months {
			return p, true
		}
	}
	return Plan{}, false
}

func (o GoldilocksOptions) Recommended() Plan {
	for _, p := range o {
		if p.Recommended {
			return p
		}
	}
	return o[1]
}

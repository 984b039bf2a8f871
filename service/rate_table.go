package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
)

type rateTier struct {
	minScore int
	rate     decimal.Decimal
}

// RateTable is the risk-based pricing step function: the higher the
// score band, the lower the annual rate. Breakpoints come from config so
// they can change without touching the underwriting rule order.
type RateTable struct {
	tiers []rateTier // descending by minScore
	floor decimal.Decimal
}

// NewRateTable validates that rates never rise as scores rise. floorRate
// applies below the lowest tier.
func NewRateTable(tiers []config.RateTier, floorRate float64) (*RateTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("rate table needs at least one tier")
	}

	sorted := make([]rateTier, 0, len(tiers))
	for _, t := range tiers {
		if t.Rate < 0 {
			return nil, fmt.Errorf("tier %d: negative rate %.2f", t.MinScore, t.Rate)
		}
		sorted = append(sorted, rateTier{minScore: t.MinScore, rate: decimal.NewFromFloat(t.Rate)})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].minScore > sorted[j].minScore
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].minScore == sorted[i-1].minScore {
			return nil, fmt.Errorf("duplicate tier for score %d", sorted[i].minScore)
		}
		if sorted[i].rate.LessThan(sorted[i-1].rate) {
			return nil, fmt.Errorf("tier %d rate %s is below higher tier %d rate %s",
				sorted[i].minScore, sorted[i].rate, sorted[i-1].minScore, sorted[i-1].rate)
		}
	}

	floor := decimal.NewFromFloat(floorRate)
	if floor.LessThan(sorted[len(sorted)-1].rate) {
		return nil, fmt.Errorf("floor rate %s is below lowest tier rate %s", floor, sorted[len(sorted)-1].rate)
	}

	return &RateTable{tiers: sorted, floor: floor}, nil
}

func (t *RateTable) RateFor(score int) decimal.Decimal {
	for _, tier := range t.tiers {
		if score >= tier.minScore {
			return tier.rate
		}
	}
	return t.floor
}

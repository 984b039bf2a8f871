package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const MaxCreditScore = 900

// CreditProfile is the pre-approved customer record held by the profile
// store. It is read once per session and never modified afterwards.
type CreditProfile struct {
	Phone            string              `json:"phone"`
	Name             string              `json:"name"`
	Score            *int                `json:"score"`
	PreApprovedLimit decimal.Decimal     `json:"limit"`
	MonthlySalary    decimal.NullDecimal `json:"salary"`
	CurrentEMIs      decimal.Decimal     `json:"current_emis"`
	City             string              `json:"city,omitempty"`
	Employment       string              `json:"employment,omitempty"`
	PAN              string              `json:"pan,omitempty"`
	Address          string              `json:"address,omitempty"`
}

// CreditScore returns the score and whether the profile carries one.
func (p CreditProfile) CreditScore() (int, bool) {
	if p.Score == nil {
		return 0, false
	}
	return *p.Score, true
}

// NameMatches does the loose comparison used during phone verification:
// a partial name ("Vikram" for "Vikram Desai") is accepted either way.
// An empty provided name always matches.
func (p CreditProfile) NameMatches(provided string) bool {
	provided = strings.ToLower(strings.TrimSpace(provided))
	if provided == "" {
		return true
	}
	registered := strings.ToLower(strings.TrimSpace(p.Name))
	return strings.Contains(registered, provided) || strings.Contains(provided, registered)
}

// Summary is the slice of the profile the dialogue layer may show once
// the phone has been verified.
func (p CreditProfile) Summary(rate decimal.Decimal) ProfileSummary {
	score, _ := p.CreditScore()
	return ProfileSummary{
		Name:             p.Name,
		Score:            score,
		PreApprovedLimit: p.PreApprovedLimit,
		Rate:             rate,
		City:             p.City,
	}
}

type ProfileSummary struct {
	Name             string          `json:"name"`
	Score            int             `json:"score"`
	PreApprovedLimit decimal.Decimal `json:"limit"`
	Rate             decimal.Decimal `json:"rate"`
	City             string          `json:"city,omitempty"`
}

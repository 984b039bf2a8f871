package domain

import "github.com/shopspring/decimal"

type LoanInput struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
}

type LoanResult struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// LoanRequest is what the customer is asking for. The amount is restated
// freely during a conversation; the latest value wins.
type LoanRequest struct {
	Purpose string          `json:"purpose,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

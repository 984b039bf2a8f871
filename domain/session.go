package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Facts accumulates what the customer has told us so far.
type Facts struct {
	Name            string              `json:"name,omitempty"`
	Purpose         string              `json:"purpose,omitempty"`
	Phone           string              `json:"phone,omitempty"`
	RequestedAmount decimal.NullDecimal `json:"requested_amount"`
	DisclosedSalary decimal.NullDecimal `json:"disclosed_salary"`
}

// CounterOffer is an amount the customer can accept with a plain confirm.
type CounterOffer struct {
	Amount decimal.Decimal `json:"amount"`
	Reason RejectReason    `json:"reason,omitempty"`
}

// SessionContext is the explicit state of one conversation. Only the gate
// machine writes to it; renderers read it.
type SessionContext struct {
	ID                  string             `json:"id"`
	Gate                Gate               `json:"gate"`
	Facts               Facts              `json:"facts"`
	Profile             *CreditProfile     `json:"-"`
	PendingProfile      *CreditProfile     `json:"-"`
	Rate                decimal.Decimal    `json:"rate"`
	LastResult          EligibilityResult  `json:"last_result,omitempty"`
	Options             *GoldilocksOptions `json:"options,omitempty"`
	ChosenPlan          *Plan              `json:"chosen_plan,omitempty"`
	PendingOffer        *CounterOffer      `json:"pending_offer,omitempty"`
	RefusalCount        int                `json:"refusal_count"`
	NegotiationAttempts int                `json:"negotiation_attempts"`
	Sanction            *SanctionRequest   `json:"sanction,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func NewSessionContext(id string, now time.Time) *SessionContext {
	return &SessionContext{
		ID:        id,
		Gate:      GateCollectName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Request is the loan request as currently stated.
func (s *SessionContext) Request() LoanRequest {
	return LoanRequest{
		Purpose: s.Facts.Purpose,
		Amount:  s.Facts.RequestedAmount.Decimal,
	}
}

// CanEvaluate reports whether both phone and amount are known, the
// precondition for any eligibility result.
func (s *SessionContext) CanEvaluate() bool {
	return s.Profile != nil && s.Facts.Phone != "" && s.Facts.RequestedAmount.Valid
}

func (s *SessionContext) Approval() (Approved, bool) {
	a, ok := s.LastResult.(Approved)
	return a, ok
}

func (s *SessionContext) DocumentIssued() bool {
	return s.Sanction != nil
}

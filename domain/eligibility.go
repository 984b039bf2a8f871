package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeApproved         Outcome = "APPROVED"
	OutcomeNeedsSalaryProof Outcome = "NEEDS_SALARY_PROOF"
	OutcomeRejected         Outcome = "REJECTED"
)

type ApprovalType string

const (
	ApprovalInstant            ApprovalType = "INSTANT"
	ApprovalConditionalCleared ApprovalType = "CONDITIONAL_CLEARED"
)

type RejectReason string

const (
	ReasonScoreBelowMinimum    RejectReason = "score_below_minimum"
	ReasonDTIExceeded          RejectReason = "dti_exceeded"
	ReasonAmountExceedsCeiling RejectReason = "amount_exceeds_ceiling"
	ReasonProfileUnavailable   RejectReason = "profile_unavailable"
)

// EligibilityResult is the outcome of one underwriting evaluation. It is
// one of Approved, NeedsSalaryProof or Rejected; callers switch on the
// concrete type. Results are replaced on re-evaluation, never mutated.
type EligibilityResult interface {
	Outcome() Outcome
	isEligibilityResult()
}

type Approved struct {
	Type         ApprovalType        `json:"type"`
	Amount       decimal.Decimal     `json:"amount"`
	EMI          decimal.Decimal     `json:"emi"`
	Rate         decimal.Decimal     `json:"rate"`
	TenureMonths int                 `json:"tenure_months"`
	DTI          decimal.NullDecimal `json:"dti"`
}

type NeedsSalaryProof struct {
	Limit       decimal.Decimal `json:"limit"`
	MaxEligible decimal.Decimal `json:"max_eligible"`
}

type Rejected struct {
	Reason      RejectReason        `json:"reason"`
	MaxEligible decimal.Decimal     `json:"max_eligible"`
	DTI         decimal.NullDecimal `json:"dti"`
}

func (Approved) Outcome() Outcome         { return OutcomeApproved }
func (NeedsSalaryProof) Outcome() Outcome { return OutcomeNeedsSalaryProof }
func (Rejected) Outcome() Outcome         { return OutcomeRejected }

func (Approved) isEligibilityResult()         {}
func (NeedsSalaryProof) isEligibilityResult() {}
func (Rejected) isEligibilityResult()         {}

// ProfileUnavailable is the result used when the profile store cannot
// answer within its deadline.
func ProfileUnavailable() Rejected {
	return Rejected{Reason: ReasonProfileUnavailable, MaxEligible: decimal.Zero}
}

func (a Approved) MarshalJSON() ([]byte, error) {
	type alias Approved
	return json.Marshal(struct {
		Outcome Outcome `json:"outcome"`
		alias
	}{OutcomeApproved, alias(a)})
}

func (n NeedsSalaryProof) MarshalJSON() ([]byte, error) {
	type alias NeedsSalaryProof
	return json.Marshal(struct {
		Outcome Outcome `json:"outcome"`
		alias
	}{OutcomeNeedsSalaryProof, alias(n)})
}

func (r Rejected) MarshalJSON() ([]byte, error) {
	type alias Rejected
	return json.Marshal(struct {
		Outcome Outcome `json:"outcome"`
		alias
	}{OutcomeRejected, alias(r)})
}

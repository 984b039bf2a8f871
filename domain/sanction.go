package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SanctionRequest is everything an external renderer needs to produce the
// sanction letter. The core emits it once per session.
type SanctionRequest struct {
	LoanID         string          `json:"loan_id"`
	SessionID      string          `json:"session_id"`
	Profile        CreditProfile   `json:"profile"`
	Purpose        string          `json:"purpose,omitempty"`
	Plan           Plan            `json:"plan"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	Rate           decimal.Decimal `json:"rate"`
	ApprovalType   ApprovalType    `json:"approval_type"`
	IssuedAt       time.Time       `json:"issued_at"`
	ValidUntil     time.Time       `json:"valid_until"`
}

// SanctionLoanID builds "LV" + issue date + last four phone digits.
func SanctionLoanID(phone string, issued time.Time) string {
	suffix := phone
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "LV" + issued.Format("20060102") + suffix
}

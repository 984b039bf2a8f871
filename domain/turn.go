package domain

import "github.com/shopspring/decimal"

// ExtractedFacts are the facts an upstream extractor found in one user
// turn. Empty strings and invalid NullDecimals mean "not mentioned".
type ExtractedFacts struct {
	Name    string              `json:"name,omitempty"`
	Purpose string              `json:"purpose,omitempty"`
	Phone   string              `json:"phone,omitempty"`
	Amount  decimal.NullDecimal `json:"amount"`
	Salary  decimal.NullDecimal `json:"salary"`
}

func (f ExtractedFacts) Empty() bool {
	return f.Name == "" && f.Purpose == "" && f.Phone == "" && !f.Amount.Valid && !f.Salary.Valid
}

type IntentKind string

const (
	IntentNone         IntentKind = "NONE"
	IntentConfirm      IntentKind = "CONFIRM"
	IntentRefuse       IntentKind = "REFUSE"
	IntentSelect       IntentKind = "SELECT"
	IntentHumanRequest IntentKind = "HUMAN_REQUEST"
	IntentFrustration  IntentKind = "FRUSTRATION"
	IntentNegotiate    IntentKind = "NEGOTIATE"
)

type NegotiationTopic string

const (
	TopicRate   NegotiationTopic = "RATE"
	TopicAmount NegotiationTopic = "AMOUNT"
	TopicEMI    NegotiationTopic = "EMI"
)

// Intent is the tagged intent of a turn. Tenure is set only for SELECT,
// Topic only for NEGOTIATE.
type Intent struct {
	Kind   IntentKind       `json:"kind"`
	Tenure int              `json:"tenure,omitempty"`
	Topic  NegotiationTopic `json:"topic,omitempty"`
}

func NoIntent() Intent     { return Intent{Kind: IntentNone} }
func Confirm() Intent      { return Intent{Kind: IntentConfirm} }
func Refuse() Intent       { return Intent{Kind: IntentRefuse} }
func HumanRequest() Intent { return Intent{Kind: IntentHumanRequest} }
func Frustration() Intent  { return Intent{Kind: IntentFrustration} }

func SelectTenure(months int) Intent {
	return Intent{Kind: IntentSelect, Tenure: months}
}
func Negotiate(topic NegotiationTopic) Intent {
	return Intent{Kind: IntentNegotiate, Topic: topic}
}

func (i Intent) Is(kind IntentKind) bool {
	if i.Kind == "" {
		return kind == IntentNone
	}
	return i.Kind == kind
}

type Turn struct {
	Facts  ExtractedFacts `json:"facts"`
	Intent Intent         `json:"intent"`
}

package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Disclosure is a category of information a payload exposes to the
// customer. Each gate permits a fixed set of categories.
type Disclosure string

const (
	DisclosureAmount      Disclosure = "amount"
	DisclosurePhone       Disclosure = "phone"
	DisclosureProfile     Disclosure = "profile"
	DisclosureEligibility Disclosure = "eligibility"
	DisclosureOptions     Disclosure = "options"
	DisclosureApproval    Disclosure = "approval"
	DisclosureDocument    Disclosure = "document"
)

type PayloadKind string

const (
	KindClarify          PayloadKind = "clarify"
	KindFactAccepted     PayloadKind = "fact_accepted"
	KindProfileNotFound  PayloadKind = "profile_not_found"
	KindIdentityMismatch PayloadKind = "identity_mismatch"
	KindEligibility      PayloadKind = "eligibility"
	KindConditionalOffer PayloadKind = "conditional_offer"
	KindOptionsPresented PayloadKind = "options_presented"
	KindPlanSelected     PayloadKind = "plan_selected"
	KindFinalApproval    PayloadKind = "final_approval"
	KindHandoff          PayloadKind = "handoff"
	KindNegotiationReply PayloadKind = "negotiation_reply"
	KindSessionClosed    PayloadKind = "session_closed"
)

// Payload is the structured result of a turn that the rendering layer
// turns into prose.
type Payload interface {
	Kind() PayloadKind
	Disclosures() []Disclosure
}

type FactKind string

const (
	FactName    FactKind = "name"
	FactPurpose FactKind = "purpose"
	FactAmount  FactKind = "amount"
	FactPhone   FactKind = "phone"
	FactSalary  FactKind = "salary"
)

type Clarify struct {
	Reason string `json:"reason"`
}

type FactAccepted struct {
	Fact  FactKind `json:"fact"`
	Value string   `json:"value"`
}

type ProfileNotFound struct {
	Phone string `json:"phone"`
}

type IdentityMismatch struct {
	ProvidedName   string `json:"provided_name"`
	RegisteredName string `json:"registered_name"`
}

type EligibilityDecision struct {
	Profile      ProfileSummary    `json:"profile"`
	Result       EligibilityResult `json:"result"`
	CounterOffer *CounterOffer     `json:"counter_offer,omitempty"`
}

type ConditionalOffer struct {
	Profile           ProfileSummary  `json:"profile"`
	InstantAmount     decimal.Decimal `json:"instant_amount"`
	ConditionalAmount decimal.Decimal `json:"conditional_amount"`
	MaxEligible       decimal.Decimal `json:"max_eligible"`
}

// OptionsPresented exposes the three plans. It deliberately carries no
// approval verdict: nothing is "approved" until a plan is chosen.
type OptionsPresented struct {
	Profile ProfileSummary    `json:"profile"`
	Amount  decimal.Decimal   `json:"amount"`
	Rate    decimal.Decimal   `json:"rate"`
	Options GoldilocksOptions `json:"options"`
}

type PlanSelected struct {
	Plan   Plan            `json:"plan"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}

type FinalApproval struct {
	Sanction SanctionRequest `json:"sanction"`
	Result   Approved        `json:"result"`
}

type HandoffReason string

const (
	HandoffRefusals             HandoffReason = "consecutive_refusals"
	HandoffHumanRequest         HandoffReason = "human_request"
	HandoffFrustration          HandoffReason = "frustration"
	HandoffNegotiationExhausted HandoffReason = "negotiation_exhausted"
	HandoffProfileIntegrity     HandoffReason = "profile_integrity"
)

type HandoffNotice struct {
	Reason HandoffReason `json:"reason"`
	From   Gate          `json:"from"`
}

type NegotiationReply struct {
	Topic       NegotiationTopic `json:"topic"`
	Tier        int              `json:"tier"`
	Rate        decimal.Decimal  `json:"rate"`
	Score       int              `json:"score"`
	MaxEligible decimal.Decimal  `json:"max_eligible"`
}

type SessionClosed struct {
	Gate Gate `json:"gate"`
}

func (Clarify) Kind() PayloadKind             { return KindClarify }
func (FactAccepted) Kind() PayloadKind        { return KindFactAccepted }
func (ProfileNotFound) Kind() PayloadKind     { return KindProfileNotFound }
func (IdentityMismatch) Kind() PayloadKind    { return KindIdentityMismatch }
func (EligibilityDecision) Kind() PayloadKind { return KindEligibility }
func (ConditionalOffer) Kind() PayloadKind    { return KindConditionalOffer }
func (OptionsPresented) Kind() PayloadKind    { return KindOptionsPresented }
func (PlanSelected) Kind() PayloadKind        { return KindPlanSelected }
func (FinalApproval) Kind() PayloadKind       { return KindFinalApproval }
func (HandoffNotice) Kind() PayloadKind       { return KindHandoff }
func (NegotiationReply) Kind() PayloadKind    { return KindNegotiationReply }
func (SessionClosed) Kind() PayloadKind       { return KindSessionClosed }

func (Clarify) Disclosures() []Disclosure { return nil }

func (f FactAccepted) Disclosures() []Disclosure {
	switch f.Fact {
	case FactAmount, FactSalary:
		return []Disclosure{DisclosureAmount}
	case FactPhone:
		return []Disclosure{DisclosurePhone}
	}
	return nil
}

func (ProfileNotFound) Disclosures() []Disclosure {
	return []Disclosure{DisclosurePhone}
}

func (IdentityMismatch) Disclosures() []Disclosure {
	return []Disclosure{DisclosureProfile}
}

func (EligibilityDecision) Disclosures() []Disclosure {
	return []Disclosure{DisclosureProfile, DisclosureEligibility}
}

func (ConditionalOffer) Disclosures() []Disclosure {
	return []Disclosure{DisclosureProfile, DisclosureEligibility, DisclosureAmount}
}

func (OptionsPresented) Disclosures() []Disclosure {
	return []Disclosure{DisclosureProfile, DisclosureOptions}
}

func (PlanSelected) Disclosures() []Disclosure {
	return []Disclosure{DisclosureOptions}
}

func (FinalApproval) Disclosures() []Disclosure {
	return []Disclosure{DisclosureApproval, DisclosureDocument, DisclosureOptions}
}

func (HandoffNotice) Disclosures() []Disclosure { return nil }

func (NegotiationReply) Disclosures() []Disclosure {
	return []Disclosure{DisclosureProfile}
}

func (SessionClosed) Disclosures() []Disclosure { return nil }

// TurnOutput is what the gate machine returns for a single turn: the gate
// the session is now in, every gate entered on the way, and the payload.
type TurnOutput struct {
	Gate    Gate
	Visited []Gate
	Payload Payload
}

func (o TurnOutput) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	var kind PayloadKind
	if o.Payload != nil {
		data, err := json.Marshal(o.Payload)
		if err != nil {
			return nil, err
		}
		raw = data
		kind = o.Payload.Kind()
	}
	return json.Marshal(struct {
		Gate    Gate            `json:"gate"`
		Visited []Gate          `json:"visited,omitempty"`
		Kind    PayloadKind     `json:"kind,omitempty"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}{o.Gate, o.Visited, kind, raw})
}

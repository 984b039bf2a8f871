package service

import (
	"fmt"

	"loan-assistant/domain"
)

// DisclosurePolicy lists, per gate, the information categories a payload
// emitted at that gate may expose. Nothing about the profile, eligibility
// or EMIs may surface before the phone is verified.
type DisclosurePolicy map[domain.Gate][]domain.Disclosure

func DefaultDisclosurePolicy() DisclosurePolicy {
	verified := []domain.Disclosure{
		domain.DisclosureAmount,
		domain.DisclosurePhone,
		domain.DisclosureProfile,
		domain.DisclosureEligibility,
	}
	withOptions := append(append([]domain.Disclosure{}, verified...), domain.DisclosureOptions)
	final := append(append([]domain.Disclosure{}, withOptions...), domain.DisclosureApproval, domain.DisclosureDocument)

	return DisclosurePolicy{
		domain.GateCollectName:      nil,
		domain.GateCollectPurpose:   nil,
		domain.GateCollectAmount:    {domain.DisclosureAmount},
		domain.GatePhoneVerify:      verified,
		domain.GatePitchOptions:     withOptions,
		domain.GateSelectOption:     withOptions,
		domain.GateVerbalAgreement:  withOptions,
		domain.GateGenerateDocument: final,
		domain.GateHumanHandoff:     nil,
	}
}

// Allows reports whether the gate permits the category.
func (p DisclosurePolicy) Allows(gate domain.Gate, d domain.Disclosure) bool {
	for _, allowed := range p[gate] {
		if allowed == d {
			return true
		}
	}
	return false
}

// Check fails with ErrDisclosureViolation when the payload exposes any
// category its gate forbids.
func (p DisclosurePolicy) Check(gate domain.Gate, payload domain.Payload) error {
	if payload == nil {
		return nil
	}
	for _, d := range payload.Disclosures() {
		if !p.Allows(gate, d) {
			return fmt.Errorf("%w: %s exposes %s at %s", domain.ErrDisclosureViolation, payload.Kind(), d, gate)
		}
	}
	return nil
}

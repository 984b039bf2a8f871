package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
	"loan-assistant/service"
)

var clarifyPrompts = map[string]string{
	service.ClarifyNeedName:         "Sorry, I didn't catch your name. What should I call you?",
	service.ClarifyNeedPurpose:      "What do you need the loan for?",
	service.ClarifyNeedAmount:       "How much would you like to borrow? You can say something like \"5 lakh\".",
	service.ClarifyNeedPhone:        "Please share your 10-digit mobile number so I can look up your offer.",
	service.ClarifyInvalidPhone:     "That doesn't look like a valid Indian mobile number. Could you check it?",
	service.ClarifyIdentityRefused:  "No problem. Please share the mobile number registered in your name.",
	service.ClarifyNeedSalary:       "Tell me your monthly salary to check the higher amount, or say yes to take the instant amount.",
	service.ClarifyNeedNewAmount:    "What amount would you like me to check instead?",
	service.ClarifySelectOption:     "Which plan works for you: the first, second or third?",
	service.ClarifyUnknownOption:    "That tenure isn't one of the plans above. Please pick one of the three.",
	service.ClarifyAwaitingConfirm:  "Shall I go ahead with this plan? Just say yes to confirm.",
	service.ClarifyProfileRequired:  "I need to verify your mobile number first.",
	service.ClarifyUnrecognisedTurn: "Sorry, I didn't follow that. Could you rephrase?",
}

var handoffMessages = map[domain.HandoffReason]string{
	domain.HandoffRefusals:             "It sounds like this isn't the right offer for you.",
	domain.HandoffHumanRequest:         "Sure.",
	domain.HandoffFrustration:          "I'm sorry this has been frustrating.",
	domain.HandoffNegotiationExhausted: "I've shared everything I can on my side.",
	domain.HandoffProfileIntegrity:     "I can't complete your application automatically.",
}

// render turns one turn's payload into the assistant's reply.
func render(out domain.TurnOutput) string {
	switch p := out.Payload.(type) {
	case domain.Clarify:
		if prompt, ok := clarifyPrompts[p.Reason]; ok {
			return prompt
		}
		return clarifyPrompts[service.ClarifyUnrecognisedTurn]

	case domain.FactAccepted:
		return renderFact(p)

	case domain.ProfileNotFound:
		return "I couldn't find a pre-approved offer for that number. Could you try another mobile number?"

	case domain.IdentityMismatch:
		return fmt.Sprintf("This number is registered to %s, not %s. Is that you?", p.RegisteredName, p.ProvidedName)

	case domain.EligibilityDecision:
		return renderDecision(p)

	case domain.ConditionalOffer:
		return fmt.Sprintf(
			"Good news %s, you're pre-approved for up to %s instantly. For %s I need your monthly salary, or say yes to take %s now.",
			firstName(p.Profile.Name), rupees(p.InstantAmount), rupees(p.ConditionalAmount), rupees(p.InstantAmount),
		)

	case domain.OptionsPresented:
		var b strings.Builder
		fmt.Fprintf(&b, "Here are your options for %s at %s%% a year:\n", rupees(p.Amount), p.Rate)
		for i, plan := range p.Options {
			fmt.Fprintf(&b, "  %d. %-8s %2d months  EMI %s  total interest %s", i+1, plan.Label, plan.TenureMonths, rupees(plan.EMI), rupees(plan.TotalInterest))
			if plan.Recommended {
				b.WriteString("  (recommended)")
			}
			b.WriteString("\n")
		}
		b.WriteString("Which one would you like?")
		return b.String()

	case domain.PlanSelected:
		return fmt.Sprintf("%s plan: %s over %d months, EMI %s. Shall I confirm it?", p.Plan.Label, rupees(p.Amount), p.Plan.TenureMonths, rupees(p.Plan.EMI))

	case domain.FinalApproval:
		s := p.Sanction
		return fmt.Sprintf(
			"Done! Loan %s is sanctioned: %s at %s%% for %d months, EMI %s. The offer is valid until %s.",
			s.LoanID, rupees(s.ApprovedAmount), s.Rate, s.Plan.TenureMonths, rupees(s.Plan.EMI), s.ValidUntil.Format("2 Jan 2006"),
		)

	case domain.HandoffNotice:
		return handoffMessages[p.Reason] + " I'm connecting you with one of our loan specialists."

	case domain.NegotiationReply:
		return renderNegotiation(p)

	case domain.SessionClosed:
		return "This conversation is closed."
	}
	return clarifyPrompts[service.ClarifyUnrecognisedTurn]
}

func renderFact(f domain.FactAccepted) string {
	switch f.Fact {
	case domain.FactName:
		return fmt.Sprintf("Nice to meet you, %s! What do you need the loan for?", f.Value)
	case domain.FactPurpose:
		return "Got it. How much would you like to borrow?"
	case domain.FactAmount:
		if d, err := decimal.NewFromString(f.Value); err == nil {
			return fmt.Sprintf("Noted, %s. What's your registered mobile number?", rupees(d))
		}
		return "Noted. What's your registered mobile number?"
	case domain.FactSalary:
		return "Thanks, I've noted your salary."
	}
	return "Noted."
}

func renderDecision(d domain.EligibilityDecision) string {
	r, ok := d.Result.(domain.Rejected)
	if !ok {
		return "Let me check that for you."
	}
	switch r.Reason {
	case domain.ReasonScoreBelowMinimum:
		return "I'm sorry, we can't offer a personal loan on your current credit profile."
	case domain.ReasonProfileUnavailable:
		return "I can't reach our records right now. Please try your number again in a moment."
	}
	if d.CounterOffer != nil {
		return fmt.Sprintf("I can't approve that amount, but I can offer %s. Say yes to go ahead or tell me another amount.", rupees(d.CounterOffer.Amount))
	}
	return "I'm sorry, I can't approve that amount."
}

func renderNegotiation(n domain.NegotiationReply) string {
	switch n.Topic {
	case domain.TopicAmount:
		return fmt.Sprintf("The most I can offer on your profile is %s.", rupees(n.MaxEligible))
	case domain.TopicEMI:
		return "A longer tenure lowers your EMI. The Extended plan has the smallest monthly payment."
	}
	if n.Tier >= 2 {
		return fmt.Sprintf("%s%% is the best rate for a credit score of %d; it is set by your score, not negotiated.", n.Rate, n.Score)
	}
	return fmt.Sprintf("Your rate of %s%% is based on your credit score of %d.", n.Rate, n.Score)
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(0)
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

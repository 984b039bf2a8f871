package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
)

// Clarify reasons tell the renderer what the customer still has to give.
const (
	ClarifyNeedName         = "need_name"
	ClarifyNeedPurpose      = "need_purpose"
	ClarifyNeedAmount       = "need_amount"
	ClarifyNeedPhone        = "need_phone"
	ClarifyInvalidPhone     = "invalid_phone"
	ClarifyIdentityRefused  = "identity_not_confirmed"
	ClarifyNeedSalary       = "need_salary_or_confirm"
	ClarifyNeedNewAmount    = "need_revised_amount"
	ClarifySelectOption     = "select_presented_option"
	ClarifyUnknownOption    = "unknown_option"
	ClarifyAwaitingConfirm  = "awaiting_confirmation"
	ClarifyProfileRequired  = "profile_not_verified"
	ClarifyUnrecognisedTurn = "unrecognised"
)

// GateMachine advances a session through its gates one turn at a time.
// It is stateless itself; all state lives in the SessionContext, which the
// caller must not share between concurrent Process calls.
type GateMachine struct {
	profiles     repository.ProfileStore
	underwriting *UnderwritingService
	options      *OptionService
	issuer       DocumentIssuer
	policy       DisclosurePolicy
	cfg          config.SessionConfig
	now          func() time.Time
	log          *logger.Logger
}

func NewGateMachine(
	profiles repository.ProfileStore,
	underwriting *UnderwritingService,
	options *OptionService,
	issuer DocumentIssuer,
	cfg config.SessionConfig,
	log *logger.Logger,
) *GateMachine {
	return &GateMachine{
		profiles:     profiles,
		underwriting: underwriting,
		options:      options,
		issuer:       issuer,
		policy:       DefaultDisclosurePolicy(),
		cfg:          cfg,
		now:          time.Now,
		log:          log.With("service", "GateMachine"),
	}
}

// SetClock replaces the time source used for sanction dates.
func (m *GateMachine) SetClock(now func() time.Time) {
	m.now = now
}

// Process applies one turn. Checks run in a fixed order and the first
// match wins: closed session, handoff interrupts, negotiation, counter
// offers, then the current gate's own logic. A turn that fails leaves the
// session exactly as it was.
func (m *GateMachine) Process(ctx context.Context, s *domain.SessionContext, turn domain.Turn) (domain.TurnOutput, error) {
	from := s.Gate
	before := *s

	out, err := m.step(ctx, s, turn)
	if err != nil {
		*s = before
		m.log.Error("turn failed", "session", s.ID, "gate", from.String(), "error", err)
		return domain.TurnOutput{}, err
	}
	if err := m.policy.Check(out.Gate, out.Payload); err != nil {
		*s = before
		m.log.Error("disclosure check failed", "session", s.ID, "gate", out.Gate.String(), "error", err)
		return domain.TurnOutput{}, err
	}

	s.UpdatedAt = m.now()
	if out.Gate != from {
		m.log.Info("gate transition", "session", s.ID, "from", from.String(), "to", out.Gate.String(), "kind", string(out.Payload.Kind()))
	} else {
		m.log.Debug("turn handled", "session", s.ID, "gate", from.String(), "kind", string(out.Payload.Kind()))
	}
	return out, nil
}

func (m *GateMachine) step(ctx context.Context, s *domain.SessionContext, turn domain.Turn) (domain.TurnOutput, error) {
	if s.Gate.Terminal() {
		return stay(s, domain.SessionClosed{Gate: s.Gate}), nil
	}

	switch {
	case turn.Intent.Is(domain.IntentHumanRequest):
		return m.handoff(s, domain.HandoffHumanRequest), nil
	case turn.Intent.Is(domain.IntentFrustration):
		return m.handoff(s, domain.HandoffFrustration), nil
	case turn.Intent.Is(domain.IntentRefuse):
		s.RefusalCount++
		if s.RefusalCount >= m.cfg.RefusalLimit {
			return m.handoff(s, domain.HandoffRefusals), nil
		}
	default:
		s.RefusalCount = 0
	}

	if turn.Intent.Is(domain.IntentNegotiate) && s.Profile != nil {
		return m.negotiate(s, turn.Intent.Topic), nil
	}

	if s.Profile != nil && (s.Gate == domain.GatePhoneVerify || s.Gate == domain.GateSelectOption) {
		if out, handled, err := m.counterOffer(ctx, s, turn); handled || err != nil {
			return out, err
		}
	}

	switch s.Gate {
	case domain.GateCollectName:
		if name := strings.TrimSpace(turn.Facts.Name); name != "" {
			s.Facts.Name = name
			return advance(s, domain.GateCollectPurpose, domain.FactAccepted{Fact: domain.FactName, Value: name}), nil
		}
		return stay(s, domain.Clarify{Reason: ClarifyNeedName}), nil

	case domain.GateCollectPurpose:
		if purpose := strings.TrimSpace(turn.Facts.Purpose); purpose != "" {
			s.Facts.Purpose = purpose
			return advance(s, domain.GateCollectAmount, domain.FactAccepted{Fact: domain.FactPurpose, Value: purpose}), nil
		}
		return stay(s, domain.Clarify{Reason: ClarifyNeedPurpose}), nil

	case domain.GateCollectAmount:
		noteSalary(s, turn.Facts)
		if amount := turn.Facts.Amount; amount.Valid && amount.Decimal.IsPositive() {
			s.Facts.RequestedAmount = amount
			return advance(s, domain.GatePhoneVerify, domain.FactAccepted{Fact: domain.FactAmount, Value: amount.Decimal.String()}), nil
		}
		return stay(s, domain.Clarify{Reason: ClarifyNeedAmount}), nil

	case domain.GatePhoneVerify:
		return m.verifyPhone(ctx, s, turn)

	case domain.GateSelectOption:
		return m.selectOption(s, turn), nil

	case domain.GateVerbalAgreement:
		return m.agree(ctx, s, turn)
	}

	return stay(s, domain.Clarify{Reason: ClarifyUnrecognisedTurn}), nil
}

// counterOffer handles restated amounts, late salary disclosure and
// acceptance of a pending offer once the profile is known. handled is
// false when the turn belongs to the ordinary gate logic.
func (m *GateMachine) counterOffer(ctx context.Context, s *domain.SessionContext, turn domain.Turn) (domain.TurnOutput, bool, error) {
	facts := turn.Facts

	if facts.Amount.Valid && facts.Amount.Decimal.IsPositive() {
		noteSalary(s, facts)
		s.Facts.RequestedAmount = facts.Amount
		out, err := m.evaluate(ctx, s)
		return out, true, err
	}

	if facts.Salary.Valid && facts.Salary.Decimal.IsPositive() {
		noteSalary(s, facts)
		if _, approved := s.Approval(); approved {
			return stay(s, domain.FactAccepted{Fact: domain.FactSalary, Value: facts.Salary.Decimal.String()}), true, nil
		}
		out, err := m.evaluate(ctx, s)
		return out, true, err
	}

	if turn.Intent.Is(domain.IntentConfirm) && s.PendingOffer != nil {
		m.log.Info("counter offer accepted", "session", s.ID, "amount", s.PendingOffer.Amount.String())
		s.Facts.RequestedAmount = decimal.NewNullDecimal(s.PendingOffer.Amount)
		out, err := m.evaluate(ctx, s)
		return out, true, err
	}

	return domain.TurnOutput{}, false, nil
}

func (m *GateMachine) verifyPhone(ctx context.Context, s *domain.SessionContext, turn domain.Turn) (domain.TurnOutput, error) {
	if s.Profile != nil {
		reason := ClarifyNeedNewAmount
		if _, ok := s.LastResult.(domain.NeedsSalaryProof); ok {
			reason = ClarifyNeedSalary
		}
		return stay(s, domain.Clarify{Reason: reason}), nil
	}

	if s.PendingProfile != nil {
		switch {
		case turn.Intent.Is(domain.IntentConfirm):
			profile := *s.PendingProfile
			s.PendingProfile = nil
			s.Facts.Name = profile.Name
			return m.resolve(ctx, s, profile)
		case turn.Intent.Is(domain.IntentRefuse):
			s.PendingProfile = nil
			s.Facts.Phone = ""
			return stay(s, domain.Clarify{Reason: ClarifyIdentityRefused}), nil
		case turn.Facts.Phone == "":
			return stay(s, domain.IdentityMismatch{ProvidedName: s.Facts.Name, RegisteredName: s.PendingProfile.Name}), nil
		}
		s.PendingProfile = nil
	}

	noteSalary(s, turn.Facts)

	if turn.Facts.Phone == "" {
		return stay(s, domain.Clarify{Reason: ClarifyNeedPhone}), nil
	}
	phone := domain.NormalizePhone(turn.Facts.Phone)
	if !domain.ValidMobile(phone) {
		return stay(s, domain.Clarify{Reason: ClarifyInvalidPhone}), nil
	}
	s.Facts.Phone = phone

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.ProfileTimeout)
	profile, err := m.profiles.FetchProfile(fetchCtx, phone)
	cancel()

	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		s.Facts.Phone = ""
		return stay(s, domain.ProfileNotFound{Phone: phone}), nil
	case err != nil:
		m.log.Warn("profile store unavailable", "session", s.ID, "phone", phone, "error", err)
		result := domain.ProfileUnavailable()
		s.LastResult = result
		return stay(s, domain.EligibilityDecision{Result: result}), nil
	}

	if _, err := checkProfile(profile); err != nil {
		m.log.Error("unusable profile", "session", s.ID, "phone", phone, "error", err)
		return m.handoff(s, domain.HandoffProfileIntegrity), nil
	}

	if !profile.NameMatches(s.Facts.Name) {
		s.PendingProfile = &profile
		return stay(s, domain.IdentityMismatch{ProvidedName: s.Facts.Name, RegisteredName: profile.Name}), nil
	}
	return m.resolve(ctx, s, profile)
}

func (m *GateMachine) resolve(ctx context.Context, s *domain.SessionContext, profile domain.CreditProfile) (domain.TurnOutput, error) {
	rate, err := m.underwriting.RateFor(profile)
	if err != nil {
		if errors.Is(err, domain.ErrProfileIntegrity) {
			return m.handoff(s, domain.HandoffProfileIntegrity), nil
		}
		return domain.TurnOutput{}, err
	}
	s.Profile = &profile
	s.Rate = rate
	return m.evaluate(ctx, s)
}

// evaluate runs underwriting on the current facts and moves the session
// according to the result. Only an approval leaves the current gate.
func (m *GateMachine) evaluate(_ context.Context, s *domain.SessionContext) (domain.TurnOutput, error) {
	result, err := m.underwriting.Evaluate(*s.Profile, s.Request(), s.Facts.DisclosedSalary)
	if err != nil {
		if errors.Is(err, domain.ErrProfileIntegrity) {
			return m.handoff(s, domain.HandoffProfileIntegrity), nil
		}
		return domain.TurnOutput{}, fmt.Errorf("evaluate session %s: %w", s.ID, err)
	}

	s.LastResult = result
	s.PendingOffer = nil
	s.Options = nil
	s.ChosenPlan = nil
	summary := s.Profile.Summary(s.Rate)

	switch r := result.(type) {
	case domain.Approved:
		return m.presentOptions(s, summary, r)

	case domain.NeedsSalaryProof:
		s.PendingOffer = &domain.CounterOffer{Amount: r.Limit}
		return stay(s, domain.ConditionalOffer{
			Profile:           summary,
			InstantAmount:     r.Limit,
			ConditionalAmount: s.Facts.RequestedAmount.Decimal,
			MaxEligible:       r.MaxEligible,
		}), nil

	default:
		s.PendingOffer = CounterOfferFor(result)
		return stay(s, domain.EligibilityDecision{
			Profile:      summary,
			Result:       result,
			CounterOffer: s.PendingOffer,
		}), nil
	}
}

// presentOptions enters PITCH_OPTIONS, builds the three plans and moves on
// to SELECT_OPTION within the same turn.
func (m *GateMachine) presentOptions(s *domain.SessionContext, summary domain.ProfileSummary, approved domain.Approved) (domain.TurnOutput, error) {
	salary := s.Facts.DisclosedSalary
	if !knownSalary(salary) {
		salary = s.Profile.MonthlySalary
	}
	opts, err := m.options.GenerateForProfile(approved.Amount, approved.Rate, salary, s.Profile.CurrentEMIs)
	if err != nil {
		return domain.TurnOutput{}, fmt.Errorf("options for session %s: %w", s.ID, err)
	}
	s.Options = &opts

	var visited []domain.Gate
	for _, g := range []domain.Gate{domain.GatePitchOptions, domain.GateSelectOption} {
		if s.Gate < g {
			s.Gate = g
			visited = append(visited, g)
		}
	}

	return domain.TurnOutput{
		Gate:    s.Gate,
		Visited: visited,
		Payload: domain.OptionsPresented{
			Profile: summary,
			Amount:  approved.Amount,
			Rate:    approved.Rate,
			Options: opts,
		},
	}, nil
}

// selectOption never picks a plan on the customer's behalf; anything but
// an explicit choice of a presented tenure asks again.
func (m *GateMachine) selectOption(s *domain.SessionContext, turn domain.Turn) domain.TurnOutput {
	approved, ok := s.Approval()
	if !ok || s.Options == nil {
		return stay(s, domain.Clarify{Reason: ClarifyNeedNewAmount})
	}
	if !turn.Intent.Is(domain.IntentSelect) {
		return stay(s, domain.Clarify{Reason: ClarifySelectOption})
	}
	plan, ok := s.Options.ByTenure(turn.Intent.Tenure)
	if !ok {
		return stay(s, domain.Clarify{Reason: ClarifyUnknownOption})
	}
	s.ChosenPlan = &plan
	return advance(s, domain.GateVerbalAgreement, domain.PlanSelected{Plan: plan, Amount: approved.Amount, Rate: approved.Rate})
}

func (m *GateMachine) agree(ctx context.Context, s *domain.SessionContext, turn domain.Turn) (domain.TurnOutput, error) {
	approved, ok := s.Approval()
	if !ok || s.ChosenPlan == nil {
		return stay(s, domain.Clarify{Reason: ClarifyProfileRequired}), nil
	}

	// Switching plans before agreeing is allowed.
	if turn.Intent.Is(domain.IntentSelect) && s.Options != nil {
		if plan, ok := s.Options.ByTenure(turn.Intent.Tenure); ok {
			s.ChosenPlan = &plan
			return stay(s, domain.PlanSelected{Plan: plan, Amount: approved.Amount, Rate: approved.Rate}), nil
		}
	}

	if !turn.Intent.Is(domain.IntentConfirm) {
		return stay(s, domain.Clarify{Reason: ClarifyAwaitingConfirm}), nil
	}
	if s.DocumentIssued() {
		return stay(s, domain.Clarify{Reason: ClarifyAwaitingConfirm}), nil
	}

	sanction := m.buildSanction(s, approved)
	if err := m.issuer.Issue(ctx, sanction); err != nil {
		return domain.TurnOutput{}, fmt.Errorf("issue sanction for session %s: %w", s.ID, err)
	}
	s.Sanction = &sanction
	return advance(s, domain.GateGenerateDocument, domain.FinalApproval{Sanction: sanction, Result: approved}), nil
}

func (m *GateMachine) buildSanction(s *domain.SessionContext, approved domain.Approved) domain.SanctionRequest {
	issued := m.now()
	return domain.SanctionRequest{
		LoanID:         domain.SanctionLoanID(s.Facts.Phone, issued),
		SessionID:      s.ID,
		Profile:        *s.Profile,
		Purpose:        s.Facts.Purpose,
		Plan:           *s.ChosenPlan,
		ApprovedAmount: approved.Amount,
		Rate:           approved.Rate,
		ApprovalType:   approved.Type,
		IssuedAt:       issued,
		ValidUntil:     issued.Add(m.cfg.SanctionValidity),
	}
}

// negotiate answers push-back on rate, amount or EMI with escalating
// tiers; once the tiers are used up the session goes to a human.
func (m *GateMachine) negotiate(s *domain.SessionContext, topic domain.NegotiationTopic) domain.TurnOutput {
	if s.NegotiationAttempts >= m.cfg.NegotiationLimit {
		return m.handoff(s, domain.HandoffNegotiationExhausted)
	}
	s.NegotiationAttempts++
	if topic == "" {
		topic = domain.TopicRate
	}
	score, _ := s.Profile.CreditScore()
	return stay(s, domain.NegotiationReply{
		Topic:       topic,
		Tier:        s.NegotiationAttempts,
		Rate:        s.Rate,
		Score:       score,
		MaxEligible: maxEligible(s),
	})
}

func (m *GateMachine) handoff(s *domain.SessionContext, reason domain.HandoffReason) domain.TurnOutput {
	from := s.Gate
	m.log.Info("handing off to human", "session", s.ID, "from", from.String(), "reason", string(reason))
	return advance(s, domain.GateHumanHandoff, domain.HandoffNotice{Reason: reason, From: from})
}

func maxEligible(s *domain.SessionContext) decimal.Decimal {
	switch r := s.LastResult.(type) {
	case domain.Rejected:
		return r.MaxEligible
	case domain.NeedsSalaryProof:
		return r.MaxEligible
	case domain.Approved:
		return decimal.Max(r.Amount, s.Profile.PreApprovedLimit)
	}
	return s.Profile.PreApprovedLimit
}

func noteSalary(s *domain.SessionContext, facts domain.ExtractedFacts) {
	if facts.Salary.Valid && facts.Salary.Decimal.IsPositive() {
		s.Facts.DisclosedSalary = facts.Salary
	}
}

func stay(s *domain.SessionContext, payload domain.Payload) domain.TurnOutput {
	return domain.TurnOutput{Gate: s.Gate, Payload: payload}
}

func advance(s *domain.SessionContext, to domain.Gate, payload domain.Payload) domain.TurnOutput {
	s.Gate = to
	return domain.TurnOutput{Gate: to, Visited: []domain.Gate{to}, Payload: payload}
}

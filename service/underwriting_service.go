package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
)

// UnderwritingService applies the eligibility rules in order; the first
// rule that matches decides. Business outcomes (rejections, salary
// requests) are returned as results. Errors mean the inputs themselves
// are broken.
type UnderwritingService struct {
	calc  *Calculator
	rates *RateTable
	log   *logger.Logger

	minScore            int
	ceilingMultiplier   decimal.Decimal
	defaultTenure       int
	safetyTenure        int
	conditionalDTILimit decimal.Decimal
	instantDTICeiling   decimal.Decimal
	safeAmountStep      decimal.Decimal
}

func NewUnderwritingService(calc *Calculator, rates *RateTable, cfg config.UnderwritingConfig, log *logger.Logger) *UnderwritingService {
	return &UnderwritingService{
		calc:                calc,
		rates:               rates,
		log:                 log.With("service", "UnderwritingService"),
		minScore:            cfg.MinScore,
		ceilingMultiplier:   decimal.NewFromInt(int64(cfg.CeilingMultiplier)),
		defaultTenure:       cfg.DefaultTenureMonths,
		safetyTenure:        cfg.SafetyTenureMonths,
		conditionalDTILimit: decimal.NewFromFloat(cfg.ConditionalDTILimit),
		instantDTICeiling:   decimal.NewFromFloat(cfg.InstantDTICeiling),
		safeAmountStep:      decimal.NewFromFloat(cfg.SafeAmountStep),
	}
}

// RateFor returns the tier rate for a profile's score.
func (s *UnderwritingService) RateFor(profile domain.CreditProfile) (decimal.Decimal, error) {
	score, err := checkProfile(profile)
	if err != nil {
		return decimal.Zero, err
	}
	return s.rates.RateFor(score), nil
}

// Evaluate decides a request against a profile. disclosedSalary is the
// salary the customer stated in this session, if any.
//
//  1. score below minimum          -> Rejected score_below_minimum
//  2. amount <= limit              -> Approved INSTANT (DTI safety check when a salary is known)
//  3. amount <= multiplier × limit -> NeedsSalaryProof, then DTI <= limit -> Approved CONDITIONAL_CLEARED
//  4. otherwise                    -> Rejected amount_exceeds_ceiling
func (s *UnderwritingService) Evaluate(
	profile domain.CreditProfile,
	req domain.LoanRequest,
	disclosedSalary decimal.NullDecimal,
) (domain.EligibilityResult, error) {
	score, err := checkProfile(profile)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: requested amount %s must be positive", domain.ErrInvalidInput, req.Amount)
	}

	if score < s.minScore {
		return domain.Rejected{Reason: domain.ReasonScoreBelowMinimum, MaxEligible: decimal.Zero}, nil
	}

	rate := s.rates.RateFor(score)
	limit := profile.PreApprovedLimit
	ceiling := limit.Mul(s.ceilingMultiplier)

	if req.Amount.LessThanOrEqual(limit) {
		salary := disclosedSalary
		if !knownSalary(salary) {
			salary = profile.MonthlySalary
		}
		return s.instant(profile, req.Amount, rate, salary)
	}

	if req.Amount.LessThanOrEqual(ceiling) {
		if !knownSalary(disclosedSalary) {
			return domain.NeedsSalaryProof{Limit: limit, MaxEligible: ceiling}, nil
		}
		return s.conditional(profile, req.Amount, rate, disclosedSalary.Decimal)
	}

	return domain.Rejected{Reason: domain.ReasonAmountExceedsCeiling, MaxEligible: limit}, nil
}

// instant approves a pre-cleared amount. When a salary is known the
// lenient safety-tenure EMI must keep total obligations under the instant
// ceiling; this catches high-debt profiles the limit alone would pass.
func (s *UnderwritingService) instant(
	profile domain.CreditProfile,
	amount, rate decimal.Decimal,
	salary decimal.NullDecimal,
) (domain.EligibilityResult, error) {
	emi, err := s.calc.ComputeEMI(amount, rate, s.defaultTenure)
	if err != nil {
		return nil, err
	}

	approved := domain.Approved{
		Type:         domain.ApprovalInstant,
		Amount:       amount,
		EMI:          emi,
		Rate:         rate,
		TenureMonths: s.defaultTenure,
	}
	if !knownSalary(salary) {
		return approved, nil
	}

	safetyEMI, err := s.calc.ComputeEMI(amount, rate, s.safetyTenure)
	if err != nil {
		return nil, err
	}
	safetyDTI, err := s.calc.ComputeDTI(safetyEMI, profile.CurrentEMIs, salary.Decimal)
	if err != nil {
		return nil, err
	}
	if safetyDTI.GreaterThan(s.instantDTICeiling) {
		s.log.Info("instant approval failed safety check", "phone", profile.Phone, "dti", RoundPercent(safetyDTI).String())
		safe := s.calc.SafeAmount(salary.Decimal, profile.CurrentEMIs, rate, s.safetyTenure, s.conditionalDTILimit, s.safeAmountStep)
		return domain.Rejected{
			Reason:      domain.ReasonDTIExceeded,
			MaxEligible: decimal.Min(safe, profile.PreApprovedLimit),
			DTI:         decimal.NewNullDecimal(RoundPercent(safetyDTI)),
		}, nil
	}

	dti, err := s.calc.ComputeDTI(emi, profile.CurrentEMIs, salary.Decimal)
	if err != nil {
		return nil, err
	}
	approved.DTI = decimal.NewNullDecimal(RoundPercent(dti))
	return approved, nil
}

// conditional clears an above-limit amount on the disclosed salary. The
// DTI limit is inclusive.
func (s *UnderwritingService) conditional(
	profile domain.CreditProfile,
	amount, rate, salary decimal.Decimal,
) (domain.EligibilityResult, error) {
	emi, err := s.calc.ComputeEMI(amount, rate, s.defaultTenure)
	if err != nil {
		return nil, err
	}
	dti, err := s.calc.ComputeDTI(emi, profile.CurrentEMIs, salary)
	if err != nil {
		return nil, err
	}

	if dti.GreaterThan(s.conditionalDTILimit) {
		return domain.Rejected{
			Reason:      domain.ReasonDTIExceeded,
			MaxEligible: profile.PreApprovedLimit,
			DTI:         decimal.NewNullDecimal(RoundPercent(dti)),
		}, nil
	}

	return domain.Approved{
		Type:         domain.ApprovalConditionalCleared,
		Amount:       amount,
		EMI:          emi,
		Rate:         rate,
		TenureMonths: s.defaultTenure,
		DTI:          decimal.NewNullDecimal(RoundPercent(dti)),
	}, nil
}

// CounterOfferFor turns a rejection that still leaves room to lend into an
// offer the customer can accept as-is.
func CounterOfferFor(result domain.EligibilityResult) *domain.CounterOffer {
	r, ok := result.(domain.Rejected)
	if !ok {
		return nil
	}
	switch r.Reason {
	case domain.ReasonDTIExceeded, domain.ReasonAmountExceedsCeiling:
		if r.MaxEligible.IsPositive() {
			return &domain.CounterOffer{Amount: r.MaxEligible, Reason: r.Reason}
		}
	}
	return nil
}

func checkProfile(profile domain.CreditProfile) (int, error) {
	score, ok := profile.CreditScore()
	if !ok {
		return 0, fmt.Errorf("%w: profile %s has no credit score", domain.ErrProfileIntegrity, profile.Name)
	}
	if score < 0 || score > domain.MaxCreditScore {
		return 0, fmt.Errorf("%w: credit score %d out of range", domain.ErrProfileIntegrity, score)
	}
	if profile.PreApprovedLimit.IsNegative() || profile.CurrentEMIs.IsNegative() {
		return 0, fmt.Errorf("%w: negative limit or obligations", domain.ErrProfileIntegrity)
	}
	return score, nil
}

func knownSalary(s decimal.NullDecimal) bool {
	return s.Valid && s.Decimal.IsPositive()
}

package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
	"loan-assistant/logger"
)

var planLabels = [3]domain.PlanLabel{domain.PlanFast, domain.PlanBalanced, domain.PlanExtended}

// OptionService builds the three repayment plans shown after approval.
type OptionService struct {
	calc    *Calculator
	tenures [3]int
	log     *logger.Logger
}

// NewOptionService takes the three tenures in ascending order. The middle
// one is marked as recommended.
func NewOptionService(calc *Calculator, tenures []int, log *logger.Logger) (*OptionService, error) {
	if len(tenures) != 3 {
		return nil, fmt.Errorf("%w: need exactly 3 tenures, got %d", domain.ErrInvalidInput, len(tenures))
	}
	var t [3]int
	for i, months := range tenures {
		if months <= 0 || (i > 0 && months <= tenures[i-1]) {
			return nil, fmt.Errorf("%w: tenures must be positive and ascending: %v", domain.ErrInvalidInput, tenures)
		}
		t[i] = months
	}
	return &OptionService{calc: calc, tenures: t, log: log.With("service", "OptionService")}, nil
}

func (s *OptionService) Tenures() [3]int {
	return s.tenures
}

// Generate computes the plans for an approved principal at the tier rate.
func (s *OptionService) Generate(principal, rate decimal.Decimal) (domain.GoldilocksOptions, error) {
	var opts domain.GoldilocksOptions
	for i, months := range s.tenures {
		emi, err := s.calc.ComputeEMI(principal, rate, months)
		if err != nil {
			return domain.GoldilocksOptions{}, fmt.Errorf("plan %s: %w", planLabels[i], err)
		}
		interest, err := s.calc.ComputeTotalInterest(emi, months, principal)
		if err != nil {
			return domain.GoldilocksOptions{}, fmt.Errorf("plan %s: %w", planLabels[i], err)
		}
		opts[i] = domain.Plan{
			Label:         planLabels[i],
			TenureMonths:  months,
			EMI:           emi,
			TotalInterest: interest,
			TotalPayment:  principal.Add(interest),
			Recommended:   i == 1,
		}
	}
	return opts, nil
}

// GenerateForProfile is Generate plus each plan's DTI when the salary is
// known. An unknown salary leaves DTI empty rather than guessing.
func (s *OptionService) GenerateForProfile(
	principal, rate decimal.Decimal,
	salary decimal.NullDecimal,
	existingEMIs decimal.Decimal,
) (domain.GoldilocksOptions, error) {
	opts, err := s.Generate(principal, rate)
	if err != nil {
		return opts, err
	}
	if !knownSalary(salary) {
		return opts, nil
	}
	for i := range opts {
		dti, err := s.calc.ComputeDTI(opts[i].EMI, existingEMIs, salary.Decimal)
		if err != nil {
			return domain.GoldilocksOptions{}, err
		}
		opts[i].DTI = decimal.NewNullDecimal(RoundPercent(dti))
	}
	s.log.Debug("options generated", "principal", principal.String(), "rate", rate.String())
	return opts, nil
}

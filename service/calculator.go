package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
)

var (
	one           = decimal.NewFromInt(1)
	hundred       = decimal.NewFromInt(100)
	twelveHundred = decimal.NewFromInt(1200)
)

// Calculator holds the EMI, interest and DTI arithmetic. Currency amounts
// are rounded half-up to Decimals places (0 = whole rupees). It has no
// state beyond that setting and is safe for concurrent use.
type Calculator struct {
	Decimals int32
}

func NewCalculator(decimals int32) *Calculator {
	return &Calculator{Decimals: decimals}
}

// Round rounds a currency amount half-up to the smallest unit.
func (c *Calculator) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Decimals)
}

// ComputeEMI returns the reducing-balance instalment
// P·r·(1+r)^n / ((1+r)^n − 1) with r = annualRatePercent/1200.
// A zero rate degrades to P/n.
func (c *Calculator) ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal %s must be positive", domain.ErrInvalidInput, principal)
	}
	if tenureMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: tenure %d must be positive", domain.ErrInvalidInput, tenureMonths)
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rate %s must not be negative", domain.ErrInvalidInput, annualRatePercent)
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePercent.IsZero() {
		return c.Round(principal.Div(n)), nil
	}

	r := annualRatePercent.Div(twelveHundred)
	growth := one.Add(r).Pow(n)
	emi := principal.Mul(r).Mul(growth).Div(growth.Sub(one))
	return c.Round(emi), nil
}

// ComputeTotalInterest is emi·n − principal. Working from the already
// rounded EMI keeps the figure consistent with what the customer pays;
// rounding on a zero-rate loan can make the difference dip below zero,
// which is reported as zero.
func (c *Calculator) ComputeTotalInterest(emi decimal.Decimal, tenureMonths int, principal decimal.Decimal) (decimal.Decimal, error) {
	if emi.IsNegative() || tenureMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: emi=%s tenure=%d principal=%s", domain.ErrInvalidInput, emi, tenureMonths, principal)
	}
	interest := emi.Mul(decimal.NewFromInt(int64(tenureMonths))).Sub(principal)
	if interest.IsNegative() {
		return decimal.Zero, nil
	}
	return interest, nil
}

// ComputeDTI returns (proposedEMI + existingEMIs) / monthlySalary × 100,
// unrounded so limit comparisons are exact.
func (c *Calculator) ComputeDTI(proposedEMI, existingEMIs, monthlySalary decimal.Decimal) (decimal.Decimal, error) {
	if !monthlySalary.IsPositive() {
		return decimal.Zero, domain.ErrDivisionByZero
	}
	if proposedEMI.IsNegative() || existingEMIs.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative obligations", domain.ErrInvalidInput)
	}
	return proposedEMI.Add(existingEMIs).Div(monthlySalary).Mul(hundred), nil
}

// SafeAmount reverses the EMI formula: the largest principal whose EMI over
// tenureMonths keeps total obligations within dtiLimit percent of salary.
// The result is floored to a multiple of step; zero means no new loan fits.
func (c *Calculator) SafeAmount(salary, existingEMIs, annualRatePercent decimal.Decimal, tenureMonths int, dtiLimit, step decimal.Decimal) decimal.Decimal {
	if !salary.IsPositive() || tenureMonths <= 0 {
		return decimal.Zero
	}
	maxEMI := salary.Mul(dtiLimit).Div(hundred).Sub(existingEMIs)
	if !maxEMI.IsPositive() {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	var principal decimal.Decimal
	if annualRatePercent.IsZero() {
		principal = maxEMI.Mul(n)
	} else {
		r := annualRatePercent.Div(twelveHundred)
		growth := one.Add(r).Pow(n)
		principal = maxEMI.Mul(growth.Sub(one)).Div(r.Mul(growth))
	}

	if step.IsPositive() {
		return principal.Div(step).Floor().Mul(step)
	}
	return principal.Floor()
}

// RoundPercent rounds a DTI for display.
func RoundPercent(p decimal.Decimal) decimal.Decimal {
	return p.Round(2)
}

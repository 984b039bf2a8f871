package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
)

// LoanService is the stateless calculator endpoint: one amount, rate and
// tenure in, EMI and totals out. Results are cached by input.
type LoanService struct {
	calc  *Calculator
	cache repository.CacheRepository
	ttl   time.Duration
	log   *logger.Logger
}

func NewLoanService(calc *Calculator, cache repository.CacheRepository, ttl time.Duration, log *logger.Logger) *LoanService {
	return &LoanService{
		calc:  calc,
		cache: cache,
		ttl:   ttl,
		log:   log.With("service", "LoanService"),
	}
}

// CalculateLoan calculates the loan details based on the input parameters.
func (s *LoanService) CalculateLoan(ctx context.Context, input domain.LoanInput) (domain.LoanResult, error) {
	if !input.Amount.IsPositive() {
		return domain.LoanResult{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if input.Amount.GreaterThan(MaxLoanAmount) {
		return domain.LoanResult{}, fmt.Errorf("%w: amount exceeds maximum of %s", domain.ErrInvalidInput, MaxLoanAmount)
	}
	if input.InterestRate.IsNegative() {
		return domain.LoanResult{}, fmt.Errorf("%w: interest rate must not be negative", domain.ErrInvalidInput)
	}
	if input.InterestRate.GreaterThan(MaxInterestRate) {
		return domain.LoanResult{}, fmt.Errorf("%w: interest rate exceeds maximum of %s%%", domain.ErrInvalidInput, MaxInterestRate)
	}
	if input.TermMonths < MinTermMonths || input.TermMonths > MaxTermMonths {
		return domain.LoanResult{}, fmt.Errorf("%w: term must be between %d and %d months", domain.ErrInvalidInput, MinTermMonths, MaxTermMonths)
	}

	key := fmt.Sprintf("%s%s:%s:%d", loanCacheKeyPrefix, input.Amount, input.InterestRate, input.TermMonths)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached domain.LoanResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	emi, err := s.calc.ComputeEMI(input.Amount, input.InterestRate, input.TermMonths)
	if err != nil {
		return domain.LoanResult{}, err
	}
	interest, err := s.calc.ComputeTotalInterest(emi, input.TermMonths, input.Amount)
	if err != nil {
		return domain.LoanResult{}, err
	}

	result := domain.LoanResult{
		MonthlyPayment: emi,
		TotalPayment:   input.Amount.Add(interest),
		TotalInterest:  interest,
	}

	// Caching is best effort.
	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.log.Warn("failed to cache loan calculation", "key", key, "error", err)
		}
	}

	return result, nil
}

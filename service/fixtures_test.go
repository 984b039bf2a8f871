package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
)

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

var (
	rahul = domain.CreditProfile{
		Phone: "+91 98765 43210", Name: "Rahul Sharma", Score: intPtr(780),
		PreApprovedLimit: dec("500000"), MonthlySalary: nullDec("85000"), CurrentEMIs: dec("0"),
	}
	priya = domain.CreditProfile{
		Phone: "9123456780", Name: "Priya Patel", Score: intPtr(742),
		PreApprovedLimit: dec("600000"), CurrentEMIs: dec("7025"),
	}
	amit = domain.CreditProfile{
		Phone: "9988776655", Name: "Amit Verma", Score: intPtr(650),
		PreApprovedLimit: dec("300000"), MonthlySalary: nullDec("40000"), CurrentEMIs: dec("0"),
	}
	vikram = domain.CreditProfile{
		Phone: "91-9278901234", Name: "Vikram Desai", Score: intPtr(810),
		PreApprovedLimit: dec("800000"), MonthlySalary: nullDec("150000"), CurrentEMIs: dec("20000"),
	}
	neha = domain.CreditProfile{
		Phone: "9000000001", Name: "Neha Gupta", Score: intPtr(760),
		PreApprovedLimit: dec("400000"), MonthlySalary: nullDec("60000"), CurrentEMIs: dec("28000"),
	}
	ghost = domain.CreditProfile{
		Phone: "9111111111", Name: "Ghost Record",
		PreApprovedLimit: dec("100000"), CurrentEMIs: dec("0"),
	}
)

func testProfiles() []domain.CreditProfile {
	return []domain.CreditProfile{rahul, priya, amit, vikram, neha, ghost}
}

func testCalculator() *Calculator {
	return NewCalculator(config.Default().Underwriting.CurrencyDecimals)
}

func testUnderwriting(t *testing.T) *UnderwritingService {
	t.Helper()
	cfg := config.Default().Underwriting
	rates, err := NewRateTable(cfg.RateTiers, cfg.FloorRate)
	if err != nil {
		t.Fatalf("rate table: %v", err)
	}
	return NewUnderwritingService(testCalculator(), rates, cfg, logger.NewNop())
}

func testOptions(t *testing.T) *OptionService {
	t.Helper()
	opts, err := NewOptionService(testCalculator(), config.Default().Underwriting.OptionTenures, logger.NewNop())
	if err != nil {
		t.Fatalf("option service: %v", err)
	}
	return opts
}

// recordingIssuer counts issued sanctions.
type recordingIssuer struct {
	mu     sync.Mutex
	issued []domain.SanctionRequest
	err    error
}

func (r *recordingIssuer) Issue(ctx context.Context, s domain.SanctionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.issued = append(r.issued, s)
	return nil
}

func (r *recordingIssuer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// slowStore blocks until the caller's deadline passes.
type slowStore struct{}

func (slowStore) FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error) {
	<-ctx.Done()
	return domain.CreditProfile{}, ctx.Err()
}

type failingStore struct{}

func (failingStore) FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error) {
	return domain.CreditProfile{}, errors.New("connection refused")
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestMachine(t *testing.T, store repository.ProfileStore) (*GateMachine, *recordingIssuer) {
	t.Helper()
	if store == nil {
		store = repository.NewProfileRepositoryMemory(testProfiles())
	}
	cfg := config.Default().Session
	cfg.ProfileTimeout = 50 * time.Millisecond

	issuer := &recordingIssuer{}
	m := NewGateMachine(store, testUnderwriting(t), testOptions(t), issuer, cfg, logger.NewNop())
	m.SetClock(func() time.Time { return fixedNow })
	return m, issuer
}

func factsTurn(f domain.ExtractedFacts) domain.Turn {
	return domain.Turn{Facts: f, Intent: domain.NoIntent()}
}

func intentTurn(i domain.Intent) domain.Turn {
	return domain.Turn{Intent: i}
}

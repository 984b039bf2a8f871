package http

import (
	"testing"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
	"loan-assistant/service"
)

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testStore() repository.ProfileStore {
	return repository.NewProfileRepositoryMemory([]domain.CreditProfile{
		{
			Phone: "9876543210", Name: "Rahul Sharma", Score: intPtr(780),
			PreApprovedLimit: dec("500000"), MonthlySalary: decimal.NewNullDecimal(dec("85000")), CurrentEMIs: dec("0"),
		},
		{
			Phone: "9123456780", Name: "Priya Patel", Score: intPtr(742),
			PreApprovedLimit: dec("600000"), CurrentEMIs: dec("7025"),
		},
		{
			Phone: "9111111111", Name: "Ghost Record",
			PreApprovedLimit: dec("100000"), CurrentEMIs: dec("0"),
		},
	})
}

type testServices struct {
	underwriting *service.UnderwritingService
	options      *service.OptionService
	profiles     repository.ProfileStore
	sessions     *service.SessionManager
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	cfg := config.Default()
	log := logger.NewNop()
	calc := service.NewCalculator(cfg.Underwriting.CurrencyDecimals)

	rates, err := service.NewRateTable(cfg.Underwriting.RateTiers, cfg.Underwriting.FloorRate)
	if err != nil {
		t.Fatalf("rate table: %v", err)
	}
	underwriting := service.NewUnderwritingService(calc, rates, cfg.Underwriting, log)
	options, err := service.NewOptionService(calc, cfg.Underwriting.OptionTenures, log)
	if err != nil {
		t.Fatalf("option service: %v", err)
	}

	profiles := testStore()
	issuer := service.NewSanctionIssuer(repository.NewSanctionRepositoryMemory(), log)
	machine := service.NewGateMachine(profiles, underwriting, options, issuer, cfg.Session, log)
	sessions := service.NewSessionManager(machine, 0, log)
	t.Cleanup(sessions.Stop)

	return testServices{
		underwriting: underwriting,
		options:      options,
		profiles:     profiles,
		sessions:     sessions,
	}
}

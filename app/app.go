package app

import (
	"fmt"

	"loan-assistant/config"
	"loan-assistant/logger"
	"loan-assistant/repository"
	"loan-assistant/service"
)

// App holds the wired services shared by the HTTP server and the chat
// CLI.
type App struct {
	Cfg          config.Config
	Log          *logger.Logger
	Profiles     repository.ProfileStore
	Sanctions    *repository.SanctionRepositoryMemory
	Underwriting *service.UnderwritingService
	Options      *service.OptionService
	Loans        *service.LoanService
	Sessions     *service.SessionManager
	Extractor    service.Extractor

	redis *repository.RedisCache
}

func New(cfg config.Config, log *logger.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	profiles, err := repository.LoadProfilesFile(cfg.Profiles.DataPath)
	if err != nil {
		return nil, fmt.Errorf("init profiles: %w", err)
	}
	log.Info("profiles loaded", "count", profiles.Len(), "path", cfg.Profiles.DataPath)

	var cache repository.CacheRepository = repository.NewMockCache()
	if cfg.Profiles.RedisAddr != "" {
		rc, err := repository.NewRedisCache(cfg.Profiles.RedisAddr, "loan-assistant:")
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = rc
		cache = rc
		log.Info("redis cache connected", "addr", cfg.Profiles.RedisAddr)
	}
	a.Profiles = repository.NewCachedProfileStore(profiles, cache, cfg.Profiles.CacheTTL, log)

	calc := service.NewCalculator(cfg.Underwriting.CurrencyDecimals)
	rates, err := service.NewRateTable(cfg.Underwriting.RateTiers, cfg.Underwriting.FloorRate)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init rate table: %w", err)
	}
	a.Underwriting = service.NewUnderwritingService(calc, rates, cfg.Underwriting, log)
	a.Options, err = service.NewOptionService(calc, cfg.Underwriting.OptionTenures, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init options: %w", err)
	}
	a.Loans = service.NewLoanService(calc, cache, cfg.Profiles.CacheTTL, log)

	a.Sanctions = repository.NewSanctionRepositoryMemory()
	issuer := service.NewSanctionIssuer(a.Sanctions, log)
	machine := service.NewGateMachine(a.Profiles, a.Underwriting, a.Options, issuer, cfg.Session, log)
	a.Sessions = service.NewSessionManager(machine, cfg.Session.IdleTTL, log)

	rules := service.NewRuleExtractor(a.Options.Tenures())
	llm := service.NewLLMExtractor(cfg.LLM, rules, log)
	if llm.Enabled() {
		log.Info("llm extraction enabled", "model", cfg.LLM.Model)
	}
	a.Extractor = llm

	return a, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Sessions != nil {
		a.Sessions.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	a.Log.Sync()
}

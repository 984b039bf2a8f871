package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "LOAN_CONFIG"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Underwriting UnderwritingConfig `yaml:"underwriting"`
	Session      SessionConfig      `yaml:"session"`
	Profiles     ProfilesConfig     `yaml:"profiles"`
	LLM          LLMConfig          `yaml:"llm"`
	Log          LogConfig          `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

// RateTier maps every score at or above MinScore to an annual rate, until
// a higher tier takes over.
type RateTier struct {
	MinScore int     `yaml:"min_score"`
	Rate     float64 `yaml:"rate"`
}

type UnderwritingConfig struct {
	MinScore            int        `yaml:"min_score"`
	CeilingMultiplier   int        `yaml:"ceiling_multiplier"`
	DefaultTenureMonths int        `yaml:"default_tenure_months"`
	SafetyTenureMonths  int        `yaml:"safety_tenure_months"`
	ConditionalDTILimit float64    `yaml:"conditional_dti_limit"`
	InstantDTICeiling   float64    `yaml:"instant_dti_ceiling"`
	CurrencyDecimals    int32      `yaml:"currency_decimals"`
	SafeAmountStep      float64    `yaml:"safe_amount_step"`
	RateTiers           []RateTier `yaml:"rate_tiers"`
	FloorRate           float64    `yaml:"floor_rate"`
	OptionTenures       []int      `yaml:"option_tenures"`
}

type SessionConfig struct {
	RefusalLimit     int           `yaml:"refusal_limit"`
	NegotiationLimit int           `yaml:"negotiation_limit"`
	ProfileTimeout   time.Duration `yaml:"profile_timeout"`
	SanctionValidity time.Duration `yaml:"sanction_validity"`
	IdleTTL          time.Duration `yaml:"idle_ttl"`
}

type ProfilesConfig struct {
	DataPath  string        `yaml:"data_path"`
	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type LLMConfig struct {
	APIKey  string        `yaml:"-"`
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Capacity: 30,
			Window:   time.Minute,
		},
		Underwriting: UnderwritingConfig{
			MinScore:            700,
			CeilingMultiplier:   2,
			DefaultTenureMonths: 36,
			SafetyTenureMonths:  60,
			ConditionalDTILimit: 50,
			InstantDTICeiling:   60,
			CurrencyDecimals:    0,
			SafeAmountStep:      10000,
			RateTiers: []RateTier{
				{MinScore: 800, Rate: 10.5},
				{MinScore: 750, Rate: 11.5},
				{MinScore: 700, Rate: 13.5},
			},
			FloorRate:     15.0,
			OptionTenures: []int{24, 36, 60},
		},
		Session: SessionConfig{
			RefusalLimit:     2,
			NegotiationLimit: 3,
			ProfileTimeout:   2 * time.Second,
			SanctionValidity: 30 * 24 * time.Hour,
			IdleTTL:          30 * time.Minute,
		},
		Profiles: ProfilesConfig{
			DataPath: "data/customers.json",
			CacheTTL: 10 * time.Minute,
		},
		LLM: LLMConfig{
			URL:     "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Profiles.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("PROFILE_DATA")); v != "" {
		cfg.Profiles.DataPath = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Log.Mode = v
	}
	cfg.LLM.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func (c Config) Validate() error {
	u := c.Underwriting
	if u.MinScore < 0 || u.MinScore > 900 {
		return fmt.Errorf("underwriting.min_score %d out of range", u.MinScore)
	}
	if u.CeilingMultiplier < 1 {
		return errors.New("underwriting.ceiling_multiplier must be at least 1")
	}
	if u.DefaultTenureMonths <= 0 || u.SafetyTenureMonths <= 0 {
		return errors.New("underwriting tenures must be positive")
	}
	if u.ConditionalDTILimit <= 0 || u.InstantDTICeiling <= 0 {
		return errors.New("underwriting DTI limits must be positive")
	}
	if u.CurrencyDecimals < 0 || u.CurrencyDecimals > 4 {
		return fmt.Errorf("underwriting.currency_decimals %d out of range", u.CurrencyDecimals)
	}
	if len(u.RateTiers) == 0 {
		return errors.New("underwriting.rate_tiers must not be empty")
	}
	if len(u.OptionTenures) != 3 {
		return fmt.Errorf("underwriting.option_tenures must list exactly 3 tenures, got %d", len(u.OptionTenures))
	}
	for i, t := range u.OptionTenures {
		if t <= 0 || (i > 0 && t <= u.OptionTenures[i-1]) {
			return errors.New("underwriting.option_tenures must be positive and strictly increasing")
		}
	}
	if c.Session.RefusalLimit < 1 || c.Session.NegotiationLimit < 1 {
		return errors.New("session limits must be at least 1")
	}
	if c.Session.ProfileTimeout <= 0 {
		return errors.New("session.profile_timeout must be positive")
	}
	if c.RateLimit.Capacity < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit capacity and window must be positive")
	}
	return nil
}

package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	LogLevel       string   `mapstructure:"LOG_LEVEL"`
	AuthMode       string   `mapstructure:"AUTH_MODE"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	MetricsEnabled bool     `mapstructure:"METRICS_ENABLED"`
	TLSEnabled     bool     `mapstructure:"TLS_ENABLED"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`

	// DisclosureDwell is the minimum time on each of the five staged reveal
	// steps, e.g. "3s,5s,8s,8s,5s".
	DisclosureDwell    []time.Duration `mapstructure:"-"`
	RelaxationDuration time.Duration   `mapstructure:"RELAXATION_DURATION"`
	SessionTTL         time.Duration   `mapstructure:"SESSION_TTL"`
	SessionSweep       time.Duration   `mapstructure:"SESSION_SWEEP_INTERVAL"`
}

const disclosureStages = 5

var envKeys = []string{
	"PORT", "ENV", "LOG_LEVEL", "AUTH_MODE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "METRICS_ENABLED",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
	"DISCLOSURE_DWELL", "RELAXATION_DURATION", "SESSION_TTL", "SESSION_SWEEP_INTERVAL",
}

// Load reads configuration from the environment and an optional .env file.
// DATABASE_URL is not required here: offline commands run without a
// database. Serving checks it through Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_MODE", "") // "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("DISCLOSURE_DWELL", "3s,5s,8s,8s,5s")
	v.SetDefault("RELAXATION_DURATION", "5m")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1m")

	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	// A missing .env file is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, eris.Wrap(err, "unmarshal config")
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	dwell, err := ParseDwell(v.GetString("DISCLOSURE_DWELL"))
	if err != nil {
		return nil, err
	}
	cfg.DisclosureDwell = dwell

	if cfg.IsDev() {
		log.Warn().Msg("running in DEVELOPMENT mode: DevAuthMiddleware grants admin to every request; set ENV=production and AUTH_SIGNING_KEY for real deployments")
	}
	return cfg, nil
}

// ParseDwell parses a comma separated list of exactly five durations.
func ParseDwell(s string) ([]time.Duration, error) {
	parts := strings.Split(s, ",")
	if len(parts) != disclosureStages {
		return nil, eris.Errorf("DISCLOSURE_DWELL needs %d durations, got %d", disclosureStages, len(parts))
	}
	out := make([]time.Duration, len(parts))
	for i, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			return nil, eris.Wrapf(err, "DISCLOSURE_DWELL[%d]", i)
		}
		if d < 0 {
			return nil, eris.Errorf("DISCLOSURE_DWELL[%d] must not be negative", i)
		}
		out[i] = d
	}
	return out, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is set it
// wins; otherwise development runs without auth and everything else expects
// HS256 bearer tokens.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Validate checks that the configuration is safe to serve with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return eris.New("DATABASE_URL is required")
	}

	switch mode := c.ResolvedAuthMode(); mode {
	case "development":
		if c.IsProduction() {
			return eris.New("AUTH_MODE=development is not allowed in production")
		}
	case "jwt":
		if len(c.AuthSigningKey) < 32 {
			return eris.New("AUTH_SIGNING_KEY must be at least 32 characters when AUTH_MODE is \"jwt\"")
		}
	default:
		return eris.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return eris.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if len(c.DisclosureDwell) != disclosureStages {
		return eris.Errorf("DISCLOSURE_DWELL needs %d durations", disclosureStages)
	}
	if c.SessionTTL <= 0 {
		return eris.New("SESSION_TTL must be positive")
	}

	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return eris.New("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return eris.New("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}
	return nil
}

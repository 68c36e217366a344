// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"

	EventsRedis = "redis"
	EventsNone  = "none"

	RevocationMemory = "memory"
	RevocationRedis  = "redis"

	SessionModePassword = "password"
	SessionModeDirect   = "direct"
)

// Config is the process configuration
type Config struct {
	HTTPAddr string `env:"ARCADE_HTTP_ADDR" envDefault:":9000"`
	Debug    bool   `env:"ARCADE_DEBUG"`

	Backend  string `env:"ARCADE_BACKEND"   envDefault:"local"`
	DBDriver string `env:"ARCADE_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"ARCADE_DB_DSN"    envDefault:"arcade.db"`

	RedisURL   string `env:"REDIS_URL"         envDefault:"redis://localhost:6379/0"`
	Events     string `env:"ARCADE_EVENTS"     envDefault:"none"`
	Revocation string `env:"ARCADE_REVOCATION" envDefault:"memory"`

	WalletDomain string `env:"ARCADE_WALLET_DOMAIN" envDefault:"metamask.local"`
	SessionMode  string `env:"ARCADE_SESSION_MODE"  envDefault:"password"`

	JWTKeyFile string        `env:"ARCADE_JWT_KEY_FILE"`
	JWTIssuer  string        `env:"ARCADE_JWT_ISSUER"  envDefault:"vibe-arcade"`
	AccessTTL  time.Duration `env:"ARCADE_ACCESS_TTL"  envDefault:"1h"`
	RefreshTTL time.Duration `env:"ARCADE_REFRESH_TTL" envDefault:"120h"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Events = strings.ToLower(strings.TrimSpace(cfg.Events))
	cfg.SessionMode = strings.ToLower(strings.TrimSpace(cfg.SessionMode))
	cfg.Revocation = strings.ToLower(strings.TrimSpace(cfg.Revocation))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NeedsRedis reports whether any component talks to Redis
func (c Config) NeedsRedis() bool {
	return c.Events == EventsRedis || (c.Backend == BackendLocal && c.Revocation == RevocationRedis)
}

// Validate checks that the selected backend has what it needs
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
			return fmt.Errorf("token lifetimes must be positive")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase backend")
		}
		if c.SessionMode == SessionModeDirect {
			return fmt.Errorf("session mode %q needs the local backend", SessionModeDirect)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Events {
	case EventsRedis, EventsNone:
	default:
		return fmt.Errorf("unknown events mode %q", c.Events)
	}

	switch c.Revocation {
	case RevocationMemory, RevocationRedis:
	default:
		return fmt.Errorf("unknown revocation store %q", c.Revocation)
	}

	switch c.SessionMode {
	case SessionModePassword, SessionModeDirect:
	default:
		return fmt.Errorf("unknown session mode %q", c.SessionMode)
	}

	return nil
}

// internal/config/config.go
//
// Server settings loaded from the environment (and .env via godotenv in main).
// Every field has a default, so an empty environment yields a working
// development server.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting of the server.
// Game rules are not configurable here; see game.DefaultRules.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/app.db"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Env          string `env:"APP_ENV"       envDefault:"development"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"dice_token"`

	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	// Reveal timing handed to the front end; the engine never waits.
	RollAnimation time.Duration `env:"ROLL_ANIMATION" envDefault:"800ms"`
	ResultFlash   time.Duration `env:"RESULT_FLASH"   envDefault:"900ms"`

	RateLimitRPS   int           `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`

	// Idle games are dropped from memory after SessionTimeout.
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"2h"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.Env == "production" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

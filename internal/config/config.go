package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// MinSessionSecretLen is the shortest SESSION_SECRET accepted in production.
const MinSessionSecretLen = 32

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string        `env:"APP_ENV" envDefault:"development"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	SessionSecret string        `env:"SESSION_SECRET"`
	DBPath        string        `env:"DB_PATH" envDefault:"./dev.db"`
	DBOpenTimeout time.Duration `env:"DB_OPEN_TIMEOUT" envDefault:"10s"`
	Port          string        `env:"PORT" envDefault:"8080"`
	RateCardPath  string        `env:"RATE_CARD_PATH"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads .env (if present) and the environment into a Config.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path.
func LoadFile(dotenvPath string) (Config, error) {
	// Best-effort: production should use real env injection.
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.AppEnv {
	case EnvDevelopment, EnvProduction:
	default:
		return Config{}, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.AppEnv)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be console or json, got %q", cfg.LogFormat)
	}
	if cfg.DBOpenTimeout <= 0 {
		return Config{}, errors.New("DB_OPEN_TIMEOUT must be positive")
	}
	if cfg.AppEnv == EnvProduction && len(cfg.SessionSecret) < MinSessionSecretLen {
		return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes in production", MinSessionSecretLen)
	}
	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == EnvDevelopment
}

// Warnings lists settings that are missing but not fatal.
func (c Config) Warnings() []string {
	var out []string
	if c.AdminEmail == "" {
		out = append(out, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		out = append(out, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		out = append(out, "SESSION_SECRET is not set; using a random secret, sessions end on restart")
	}
	if c.RateCardPath == "" {
		out = append(out, "RATE_CARD_PATH is not set; using the embedded rate card")
	}
	return out
}

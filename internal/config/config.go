package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const minSecretKeyLength = 32

var placeholderSecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	DevMode          bool          `env:"DENTCLINIC_DEV_MODE" envDefault:"false"`
	Port             string        `env:"PORT" envDefault:"8080"`
	SecretKey        string        `env:"SECRET_KEY"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"data/dentclinic.db"`
	LocalDBPath      string        `env:"LOCAL_DB_PATH" envDefault:"data/dentclinic-local.db"`
	Timezone         string        `env:"TZ" envDefault:"America/Sao_Paulo"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"false"`
	ReminderSchedule string        `env:"REMINDER_SCHEDULE" envDefault:"0 18 * * *"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	DefaultLanguage  string        `env:"DEFAULT_LANGUAGE" envDefault:"pt"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// Load reads an optional .env file and then the process environment, and
// validates the result for serving. Variables already set in the environment win
// over the file.
func Load(dotenvFiles ...string) (Config, error) {
	cfg, err := LoadUnvalidated(dotenvFiles...)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for operator commands that never
// sign tokens.
func LoadUnvalidated(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	secret, err := validateSecretKey(cfg.SecretKey)
	if err != nil {
		return err
	}
	cfg.SecretKey = secret

	port, err := validatePort(cfg.Port)
	if err != nil {
		return err
	}
	cfg.Port = port

	if !cfg.DevMode && strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required outside dev mode")
	}
	if cfg.DevMode && strings.TrimSpace(cfg.LocalDBPath) == "" {
		return errors.New("LOCAL_DB_PATH is required in dev mode")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return nil
}

// Location resolves TZ, falling back to UTC for unknown names.
func (cfg Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		return time.UTC, fmt.Errorf("invalid TZ %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

func validateSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, placeholder := placeholderSecrets[strings.ToLower(secret)]; placeholder {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func validatePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if value < 1 || value > 65535 {
		return "", fmt.Errorf("PORT out of range: %d", value)
	}
	return port, nil
}

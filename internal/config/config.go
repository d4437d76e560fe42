// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/roach88/grocer/internal/domain"
)

// Prefix is the environment variable prefix: GROCER_DB, GROCER_CURRENCY,
// GROCER_ROLE.
const Prefix = "GROCER"

// Config holds settings shared by every command. Command-line flags
// override the values loaded here.
type Config struct {
	// DB is the path of the SQLite database file.
	DB string `envconfig:"DB" default:"grocer.db"`

	// Currency is the ISO 4217 code used when printing prices.
	Currency string `envconfig:"CURRENCY" default:"USD"`

	// Role is "admin" or "user".
	Role string `envconfig:"ROLE" default:"user"`
}

// Load reads Config from the environment and validates it.
func Load() (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads Config from the environment without validating it, so
// callers can apply overrides first.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values and normalises the currency code.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return domain.NewInvalidInput("database path must not be empty")
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if len(c.Currency) != 3 {
		return domain.NewInvalidInput(fmt.Sprintf("currency %q is not a 3-letter code", c.Currency))
	}
	if _, err := domain.ParseRole(c.Role); err != nil {
		return err
	}
	return nil
}

// ParsedRole returns the configured role.
func (c Config) ParsedRole() domain.Role {
	role, _ := domain.ParseRole(c.Role)
	return role
}

// Usage writes the table of recognised environment variables to w.
func Usage(w io.Writer) error {
	var cfg Config
	return envconfig.Usagef(Prefix, &cfg, w, envconfig.DefaultTableFormat)
}

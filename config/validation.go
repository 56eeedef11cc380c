package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the loaded configuration for coherence before the
// action does any work.
func Validate(cfg *Config) error {
	if err := validateService(&cfg.Service); err != nil {
		return fmt.Errorf("service config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateService(cfg *ServiceConfig) error {
	if cfg.Origin == "" {
		return fmt.Errorf("service origin is required")
	}

	parsed, err := url.Parse(cfg.Origin)
	if err != nil {
		return fmt.Errorf("invalid service origin: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid service origin: %s (scheme must be http or https)", cfg.Origin)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid service origin: %s (host is required)", cfg.Origin)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(validLogLevels, cfg.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			cfg.Level, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// Package config loads and validates the action's runtime configuration.
// Values come from built-in defaults, an optional config.yaml, and
// COUNTER_* environment variables, in increasing order of priority.
package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the root configuration structure
type Config struct {
	Service ServiceConfig `koanf:"service"`
	Log     LogConfig     `koanf:"log"`

	k *koanf.Koanf
}

// ServiceConfig describes the remote counter service endpoint
type ServiceConfig struct {
	// Origin is the base URL of the counter service, without a trailing slash
	Origin string `koanf:"origin"`
	// Timeout bounds a single HTTP exchange
	Timeout time.Duration `koanf:"timeout"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

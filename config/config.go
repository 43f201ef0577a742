// Package config loads the command-line configuration.
//
// Values resolve in order: flags bound to the viper instance, AUTH_HARNESS_*
// environment variables, the config file, then defaults.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/engine"
	"github.com/mark3labs/auth-harness/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "AUTH_HARNESS"

// Keys.
const (
	KeyCycleBudget  = "cycles"
	KeyEngineURL    = "engine-url"
	KeyEngineSecret = "engine-secret"
	KeyLogLevel     = "log-level"
	KeyListen       = "listen"
)

// DefaultListen is the address the engine server binds to by default.
const DefaultListen = "127.0.0.1:8714"

// Config is the resolved configuration.
type Config struct {
	// CycleBudget bounds each engine call.
	CycleBudget uint64

	// EngineURL selects a remote engine. Empty means the in-process engine.
	EngineURL string

	// EngineSecret authenticates requests to and from a remote engine.
	EngineSecret string

	// LogLevel is the zap level name.
	LogLevel string

	// Listen is the engine server address.
	Listen string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyCycleBudget, engine.DefaultCycleBudget)
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyListen, DefaultListen)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return authharness.NewError(authharness.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to read config file %s", path), fmt.Errorf("%w: %v", authharness.ErrInvalidConfig, err)).
			WithDetails("key", "config")
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		CycleBudget:  v.GetUint64(KeyCycleBudget),
		EngineURL:    strings.TrimSpace(v.GetString(KeyEngineURL)),
		EngineSecret: v.GetString(KeyEngineSecret),
		LogLevel:     v.GetString(KeyLogLevel),
		Listen:       v.GetString(KeyListen),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can run with.
func (c Config) Validate() error {
	if c.CycleBudget == 0 {
		return authharness.InvalidConfig(KeyCycleBudget, "cycle budget must be positive")
	}
	if c.EngineURL != "" {
		u, err := url.Parse(c.EngineURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return authharness.InvalidConfig(KeyEngineURL, fmt.Sprintf("engine url %q must be an absolute http(s) URL", c.EngineURL))
		}
	}
	if c.Listen == "" {
		return authharness.InvalidConfig(KeyListen, "listen address must not be empty")
	}
	return nil
}

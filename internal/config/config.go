package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`

	PrometheusPort int `toml:"prometheus_port"`

	// auth sessions
	SessionTTLMinutes    int `toml:"session_ttl_minutes"`
	LoginRateLimitPerMin int `toml:"login_rate_limit_per_min"`

	SentryEnabled    bool   `toml:"sentry_enabled"`
	SentryServerName string `toml:"sentry_server_name"`
	HoneycombEnabled bool   `toml:"honeycomb_enabled"`

	// seed the store with a few demo users, exercises and workouts
	LoadSampleData bool `toml:"load_sample_data"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s not found in %s", env, path)
	}

	return cfg, nil
}

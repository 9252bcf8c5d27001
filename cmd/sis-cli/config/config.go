package config

import (
	"fmt"
	"time"

	"sisassist-backend/internal/components/configutil"
	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/internal/scrapers/sis"
	"sisassist-backend/internal/store"
)

type WatchConfig struct {
	// Cron is a robfig/cron spec, ex. "0 */2 * * *" or "@every 2h".
	Cron string `json:"cron"`
}

type Config struct {
	Institution string `json:"institution"`
	// BaseUrl overrides the url derived from the institution.
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	// Password is usually given as an environment reference, ex. "${SIS_PASSWORD}".
	Password string `json:"password"`
	// Timezone is an IANA timezone name, grade snapshots are bucketed by day in it.
	Timezone          string           `json:"timezone"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	TimeoutSeconds    int              `json:"timeout_seconds"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	Database          store.Config     `json:"database"`
	Telemetry         telemetry.Config `json:"telemetry"`
	Watch             WatchConfig      `json:"watch"`
}

const DefaultName = "sis.json5"

// Read reads the config at path, or looks for sis.json5 from the working directory
// upwards if path is empty. Missing optional fields are given defaults.
func Read(path string) (Config, error) {
	var cfg Config
	var err error
	if path == "" {
		cfg, err = configutil.ReadRecursively[Config](DefaultName)
	} else {
		cfg, err = configutil.ReadConfig[Config](path)
	}
	if err != nil {
		return Config{}, err
	}

	if cfg.Institution == "" {
		return Config{}, fmt.Errorf("config: institution is required")
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "sis.db"
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = "0 */2 * * *"
	}
	return cfg, nil
}

// SessionOptions are the sis options this config describes.
func (c Config) SessionOptions(tel telemetry.API) []sis.Option {
	opts := []sis.Option{
		sis.WithTelemetry(tel),
		sis.WithRateLimit(c.RequestsPerSecond, max(int(c.RequestsPerSecond), 1)),
		sis.WithTimeout(time.Duration(c.TimeoutSeconds) * time.Second),
	}
	if c.BaseUrl != "" {
		opts = append(opts, sis.WithBaseURL(c.BaseUrl))
	}
	if c.CloudflareBypass {
		opts = append(opts, sis.WithCloudflareBypass())
	}
	return opts
}

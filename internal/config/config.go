// Package config loads the per-cycle station configuration from the
// environment. The process is single-shot: configuration is read once
// before the task graph starts and never reloaded.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type environmentVariables struct {
	WeatherAPIKey string `env:"WEATHER_API_KEY,required"`

	// Calendar access is optional; when the service account is not
	// configured the calendar task goes straight to the fact fallback.
	ServiceAccountEmail   string `env:"SERVICE_ACCOUNT_EMAIL"`
	ServiceAccountKeyPath string `env:"SERVICE_ACCOUNT_KEY_PATH"`
	CalendarID            string `env:"CALENDAR_ID"`

	UseDynamicLocation bool    `env:"USE_DYNAMIC_LOCATION" envDefault:"true"`
	StaticLatitude     float64 `env:"STATIC_LATITUDE"`
	StaticLongitude    float64 `env:"STATIC_LONGITUDE"`
	StaticTimezone     string  `env:"STATIC_TIMEZONE"`
	GeocoderAPIKey     string  `env:"GEOCODER_API_KEY"`

	HTTPTimeout   string `env:"HTTP_TIMEOUT" envDefault:"10s"`
	SleepDuration string `env:"SLEEP_DURATION" envDefault:"30m"`

	PanelWidth  int    `env:"PANEL_WIDTH" envDefault:"960"`
	PanelHeight int    `env:"PANEL_HEIGHT" envDefault:"540"`
	FontPath    string `env:"FONT_PATH"`
	IconDir     string `env:"ICON_DIR"`
	OutputPath  string `env:"PANEL_OUTPUT_PATH" envDefault:"panel.png"`
}

// Config is the validated station configuration.
type Config struct {
	// The env layer's required tag only rejects unset variables; the
	// validator also rejects a set-but-empty key.
	WeatherAPIKey string `validate:"required"`

	ServiceAccountEmail   string
	ServiceAccountKeyPath string
	CalendarID            string

	UseDynamicLocation bool
	StaticLatitude     float64 `validate:"gte=-90,lte=90"`
	StaticLongitude    float64 `validate:"gte=-180,lte=180"`
	StaticTimezone     string
	GeocoderAPIKey     string

	HTTPTimeout   time.Duration `validate:"gt=0"`
	SleepDuration time.Duration `validate:"gt=0"`

	PanelWidth  int `validate:"gt=0"`
	PanelHeight int `validate:"gt=0"`
	FontPath    string
	IconDir     string
	OutputPath  string `validate:"required"`
}

// CalendarConfigured reports whether the authenticated calendar path has
// everything it needs.
func (c *Config) CalendarConfigured() bool {
	return c.ServiceAccountEmail != "" && c.ServiceAccountKeyPath != "" && c.CalendarID != ""
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	envVars := &environmentVariables{}
	if err := env.Parse(envVars); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	httpTimeout, err := time.ParseDuration(envVars.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	sleep, err := time.ParseDuration(envVars.SleepDuration)
	if err != nil {
		return nil, fmt.Errorf("invalid SLEEP_DURATION: %w", err)
	}

	cfg := &Config{
		WeatherAPIKey:         envVars.WeatherAPIKey,
		ServiceAccountEmail:   envVars.ServiceAccountEmail,
		ServiceAccountKeyPath: envVars.ServiceAccountKeyPath,
		CalendarID:            envVars.CalendarID,
		UseDynamicLocation:    envVars.UseDynamicLocation,
		StaticLatitude:        envVars.StaticLatitude,
		StaticLongitude:       envVars.StaticLongitude,
		StaticTimezone:        envVars.StaticTimezone,
		GeocoderAPIKey:        envVars.GeocoderAPIKey,
		HTTPTimeout:           httpTimeout,
		SleepDuration:         sleep,
		PanelWidth:            envVars.PanelWidth,
		PanelHeight:           envVars.PanelHeight,
		FontPath:              envVars.FontPath,
		IconDir:               envVars.IconDir,
		OutputPath:            envVars.OutputPath,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.UseDynamicLocation && cfg.StaticTimezone == "" {
		return nil, fmt.Errorf("STATIC_TIMEZONE is required when USE_DYNAMIC_LOCATION=false")
	}

	return cfg, nil
}

package sysconfig

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone                   = "UTC"
	DefaultClockOutGracePeriodMinutes = 30
)

// Settings holds the attendance-wide system configuration.
type Settings struct {
	Timezone                   string `yaml:"timezone" json:"timezone"`
	ClockOutGracePeriodMinutes int    `yaml:"clock_out_grace_period_minutes" json:"clock_out_grace_period_minutes"`
}

// Defaults returns the settings used when no configuration can be read.
func Defaults() Settings {
	return Settings{
		Timezone:                   DefaultTimezone,
		ClockOutGracePeriodMinutes: DefaultClockOutGracePeriodMinutes,
	}
}

// Location resolves the configured IANA timezone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// GracePeriod returns the clock-out grace period as a duration.
func (s Settings) GracePeriod() time.Duration {
	return time.Duration(s.ClockOutGracePeriodMinutes) * time.Minute
}

// Provider exposes the current cached settings.
type Provider interface {
	Settings() Settings
}

// Store loads settings from a YAML file once and caches them, together with
// the resolved location, until Refresh.
type Store struct {
	path     string
	mu       sync.RWMutex
	settings Settings
	location *time.Location
}

// NewStore creates a store and performs the initial load. Load failures are
// logged and the store falls back to Defaults.
func NewStore(path string) *Store {
	s := &Store{path: path, settings: Defaults(), location: time.UTC}
	if err := s.Refresh(); err != nil {
		slog.Warn("System config unavailable, using defaults",
			"path", path,
			"timezone", DefaultTimezone,
			"grace_period_minutes", DefaultClockOutGracePeriodMinutes,
			"error", err)
	}
	return s
}

// NewStaticStore returns a store that always serves the given settings. An
// unknown timezone is logged once and served as UTC.
func NewStaticStore(settings Settings) *Store {
	if settings.Timezone == "" {
		settings.Timezone = DefaultTimezone
	}
	loc, err := settings.Location()
	if err != nil {
		slog.Warn("Invalid timezone in system config, falling back to UTC", "timezone", settings.Timezone, "error", err)
		loc = time.UTC
	}
	return &Store{settings: settings, location: loc}
}

// Settings implements Provider.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Location returns the location resolved when the settings were loaded.
func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Refresh re-reads the configuration file. On error the previously cached
// settings are kept.
func (s *Store) Refresh() error {
	if s.path == "" {
		return fmt.Errorf("sysconfig: no config path set")
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("sysconfig: read file %s: %w", s.path, err)
	}

	loaded, loc, err := parse(b)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = loaded
	s.location = loc
	s.mu.Unlock()

	slog.Info("System config loaded",
		"path", s.path,
		"timezone", loaded.Timezone,
		"grace_period_minutes", loaded.ClockOutGracePeriodMinutes)
	return nil
}

// Parse decodes YAML settings. Keys missing from the document keep their
// default values; an unknown timezone or a negative grace period is rejected.
func Parse(b []byte) (Settings, error) {
	loaded, _, err := parse(b)
	return loaded, err
}

func parse(b []byte) (Settings, *time.Location, error) {
	loaded := Defaults()
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		return Settings{}, nil, fmt.Errorf("sysconfig: parse yaml: %w", err)
	}
	if loaded.ClockOutGracePeriodMinutes < 0 {
		return Settings{}, nil, fmt.Errorf("sysconfig: clock_out_grace_period_minutes must not be negative")
	}
	if loaded.Timezone == "" {
		loaded.Timezone = DefaultTimezone
	}
	loc, err := loaded.Location()
	if err != nil {
		return Settings{}, nil, fmt.Errorf("sysconfig: invalid timezone %q: %w", loaded.Timezone, err)
	}
	return loaded, loc, nil
}

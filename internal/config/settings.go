package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Paths
	CatalogPath string `json:"catalog_path"`
	StatePath   string `json:"state_path"`

	// Fetch behavior
	DefaultLookbackDays int     `json:"default_lookback_days"`
	DefaultTopLimit     int     `json:"default_top_limit"`
	MaxFetchRetries     int     `json:"max_fetch_retries"`
	FetchRetryCooldown  float64 `json:"fetch_retry_cooldown"`
	FetchRetryExponent  float64 `json:"fetch_retry_exponent"`

	// Resume cache freshness, in hours. Cached results older than these
	// windows are re-fetched.
	RecentCacheMaxAgeHours float64 `json:"recent_cache_max_age_hours"`
	TopCacheMaxAgeHours    float64 `json:"top_cache_max_age_hours"`

	// TrackNameFilters lists substrings (matched case-insensitively)
	// whose tracks are excluded from the catalog, e.g. trailers scrobbled
	// by a video player.
	TrackNameFilters []string `json:"track_name_filters"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CatalogPath: filepath.Join("data", "discovery_catalog.json"),
		StatePath:   filepath.Join("data", "state.json"),

		DefaultLookbackDays: 7,
		DefaultTopLimit:     1000,
		MaxFetchRetries:     5,
		FetchRetryCooldown:  0.5,
		FetchRetryExponent:  3.0,

		RecentCacheMaxAgeHours: 6,
		TopCacheMaxAgeHours:    24,

		TrackNameFilters: []string{"trailer"},
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// RecentCacheMaxAge returns the freshness window for cached recent tracks.
func (s *Settings) RecentCacheMaxAge() time.Duration {
	return time.Duration(s.RecentCacheMaxAgeHours * float64(time.Hour))
}

// TopCacheMaxAge returns the freshness window for cached top artists.
func (s *Settings) TopCacheMaxAge() time.Duration {
	return time.Duration(s.TopCacheMaxAgeHours * float64(time.Hour))
}

// Credentials are the Last.fm API credentials for a live run.
type Credentials struct {
	APIKey    string
	APISecret string
}

// ErrMissingCredentials reports absent API credentials; fatal for a live
// run before any network is attempted, irrelevant for a dry run.
var ErrMissingCredentials = errors.New(
	"missing Last.fm API credentials: set LASTFM_API_KEY and LASTFM_API_SECRET")

// CredentialsFromEnv reads API credentials from the environment once at
// startup.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		APIKey:    os.Getenv("LASTFM_API_KEY"),
		APISecret: os.Getenv("LASTFM_API_SECRET"),
	}
	if creds.APIKey == "" || creds.APISecret == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

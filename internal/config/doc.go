// Package config provides configuration management for the discovery
// cataloger.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - API credentials from the environment
//
// # Default Settings
//
// Use DefaultSettings() for sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Catalog at data/discovery_catalog.json
//	// 7-day lookback against the all-time top 1000
//	// 5 fetch attempts with exponential cooldown
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	// Uses defaults if the file doesn't exist
//
// # Credentials
//
// API credentials never live in the settings file; they are read once from
// the LASTFM_API_KEY and LASTFM_API_SECRET environment variables:
//
//	creds, err := config.CredentialsFromEnv()
//	if err != nil {
//	    // fatal for a live run, irrelevant for --dry-run
//	}
package config

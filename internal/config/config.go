// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-notes-sync client. It aggregates all sub-configurations and is
// populated by merging built-in defaults, an optional config file,
// environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix - prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       - direct environment variable name for scalar fields.
//   - mapstructure - key used when decoding the config file with viper.
type StructuredConfig struct {
	// App holds session-level settings such as the API token.
	App App `envPrefix:"APP_" mapstructure:"app"`

	// Adapter holds the remote service endpoint and transport settings.
	Adapter Adapter `envPrefix:"ADAPTER_" mapstructure:"adapter"`

	// Storage holds the local queue database and the attachment directory.
	Storage Storage `envPrefix:"STORAGE_" mapstructure:"storage"`

	// Sync holds scheduler and failure policy settings.
	Sync Sync `envPrefix:"SYNC_" mapstructure:"sync"`

	// Log holds client log file settings.
	Log Log `envPrefix:"LOG_" mapstructure:"log"`

	// ConfigFilePath is the optional path to a JSON, YAML or TOML config
	// file. Populated via the CONFIG environment variable or the -c / -config
	// flag. Never read from the file itself.
	ConfigFilePath string `env:"CONFIG" mapstructure:"-"`
}

// App holds application-level configuration values.
type App struct {
	// Token is the bearer token issued by the remote service at login. The
	// user id is taken from its subject claim.
	// Env: APP_TOKEN
	Token string `env:"TOKEN" mapstructure:"token"`

	// Version is the semantic version string of the running client.
	// Env: APP_VERSION
	Version string `env:"VERSION" mapstructure:"version"`
}

// Adapter holds the settings of the outbound HTTP transport.
type Adapter struct {
	// Endpoint is the base URL of the home service
	// (e.g. "https://api.notes.example").
	// Env: ADAPTER_ENDPOINT
	Endpoint string `env:"ENDPOINT" mapstructure:"endpoint"`

	// Proxy is an optional HTTP proxy ("host:port" or a full URL).
	// Env: ADAPTER_PROXY
	Proxy string `env:"PROXY" mapstructure:"proxy"`

	// RequestTimeout bounds regular API requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" mapstructure:"request_timeout"`

	// DownloadTimeout bounds a single attachment download.
	// Env: ADAPTER_DOWNLOAD_TIMEOUT
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" mapstructure:"download_timeout"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the SQLite connection settings of the sync queue.
	DB DB `envPrefix:"DB_" mapstructure:"db"`

	// Files holds the attachment directory settings.
	Files Files `envPrefix:"FILES_" mapstructure:"files"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path or URI.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN" mapstructure:"dsn"`
}

// Files holds file-system settings for downloaded attachments.
type Files struct {
	// Dir is the root directory; files land in <Dir>/<user_id>/<item_id>.enc.
	// Env: STORAGE_FILES_DIR
	Dir string `env:"DIR" mapstructure:"dir"`
}

// Sync holds the settings of the background syncers.
type Sync struct {
	// Disabled starts the client with every syncer switched off.
	// Env: SYNC_DISABLED
	Disabled bool `env:"DISABLED" mapstructure:"disabled"`

	// MaxFailures is the number of failed attempts after which a queue
	// record is frozen.
	// Env: SYNC_MAX_FAILURES
	MaxFailures int `env:"MAX_FAILURES" mapstructure:"max_failures"`
}

// Log holds client log file settings. An empty File logs to stdout.
type Log struct {
	// Env: LOG_FILE
	File string `env:"FILE" mapstructure:"file"`
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB" mapstructure:"max_size_mb"`
	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS" mapstructure:"max_backups"`
	// Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS" mapstructure:"max_age_days"`
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL" mapstructure:"level"`
}

// Defaults returns the built-in configuration every other source is merged
// over.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout:  15 * time.Second,
			DownloadTimeout: 30 * time.Second,
		},
		Storage: Storage{
			DB:    DB{DSN: "notes-sync.db"},
			Files: Files{Dir: "files"},
		},
		Sync: Sync{MaxFailures: 3},
		Log: Log{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Level:      "info",
		},
	}
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Config file (path resolved from env and flags)
//  3. Environment variables
//  4. Command-line flags
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withFile().
		build()
}

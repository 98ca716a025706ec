package config

import (
	"flag"
	"fmt"
	"time"
)

// parseFlags parses the client command line.
//
// Flags:
//
//	-e/-endpoint home service base URL
//	-proxy http proxy for outbound requests
//	-t/-token API bearer token
//	-d database DSN
//	-f attachment directory
//	-c/-config config file path (json, yaml, toml)
//	-request-timeout API request timeout (e.g., "15s")
//	-download-timeout attachment download timeout (e.g., "30s")
//	-max-failures failed attempts before a queue record is frozen
//	-no-sync start with syncing disabled
//	-log-file client log file path
//	-log-level log level (debug, info, warn, error)
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("notes-sync", flag.ContinueOnError)

	var (
		endpoint        string
		proxy           string
		token           string
		databaseDSN     string
		filesDir        string
		configPath      string
		requestTimeout  time.Duration
		downloadTimeout time.Duration
		maxFailures     int
		noSync          bool
		logFile         string
		logLevel        string
	)

	fs.StringVar(&endpoint, "e", "", "Home service base URL")
	fs.StringVar(&endpoint, "endpoint", "", "Home service base URL (alias)")
	fs.StringVar(&proxy, "proxy", "", "HTTP proxy host:port or URL")
	fs.StringVar(&token, "t", "", "API bearer token")
	fs.StringVar(&token, "token", "", "API bearer token (alias)")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&filesDir, "f", "", "Attachment directory")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "API request timeout (e.g., 15s)")
	fs.DurationVar(&downloadTimeout, "download-timeout", 0, "Attachment download timeout (e.g., 30s)")
	fs.IntVar(&maxFailures, "max-failures", 0, "Failed attempts before a queue record is frozen")
	fs.BoolVar(&noSync, "no-sync", false, "Start with syncing disabled")
	fs.StringVar(&logFile, "log-file", "", "Client log file path")
	fs.StringVar(&logLevel, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			Token: token,
		},
		Adapter: Adapter{
			Endpoint:        endpoint,
			Proxy:           proxy,
			RequestTimeout:  requestTimeout,
			DownloadTimeout: downloadTimeout,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Files: Files{Dir: filesDir},
		},
		Sync: Sync{
			Disabled:    noSync,
			MaxFailures: maxFailures,
		},
		Log: Log{
			File:  logFile,
			Level: logLevel,
		},
		ConfigFilePath: configPath,
	}, nil
}

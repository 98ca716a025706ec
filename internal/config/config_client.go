package config

import (
	"fmt"
	"time"
)

// ClientApp holds session settings of the running client.
type ClientApp struct {
	// Token is the bearer token used for the home service.
	Token string
	// Version is the client version string.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// Endpoint is the base URL of the home service.
	Endpoint string
	// Proxy is the optional outbound proxy.
	Proxy string
	// RequestTimeout is the default timeout for API requests.
	RequestTimeout time.Duration
	// DownloadTimeout is the timeout of a single attachment download.
	DownloadTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string.
	DSN string
}

// ClientFiles contains attachment directory settings.
type ClientFiles struct {
	// Dir is the attachment root directory.
	Dir string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB    ClientDB
	Files ClientFiles
}

// ClientSync contains background syncer settings.
type ClientSync struct {
	// Enabled reports whether syncers start switched on.
	Enabled bool
	// MaxFailures is the freeze threshold of the failure policy.
	MaxFailures int
}

// ClientLog contains client log file settings.
type ClientLog struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    ClientSync
	Log     ClientLog
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps a merged [StructuredConfig] to the client view without
// validating it.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			Token:   cfg.App.Token,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			Endpoint:        cfg.Adapter.Endpoint,
			Proxy:           cfg.Adapter.Proxy,
			RequestTimeout:  cfg.Adapter.RequestTimeout,
			DownloadTimeout: cfg.Adapter.DownloadTimeout,
		},
		Storage: ClientStorage{
			DB:    ClientDB{DSN: cfg.Storage.DB.DSN},
			Files: ClientFiles{Dir: cfg.Storage.Files.Dir},
		},
		Sync: ClientSync{
			Enabled:     !cfg.Sync.Disabled,
			MaxFailures: cfg.Sync.MaxFailures,
		},
		Log: ClientLog{
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Level:      cfg.Log.Level,
		},
	}
}

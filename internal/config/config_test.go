// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("ADAPTER_ENDPOINT", "https://api.notes.example")
	t.Setenv("ADAPTER_DOWNLOAD_TIMEOUT", "1m")
	t.Setenv("SYNC_DISABLED", "true")
	t.Setenv("LOG_FILE", "/tmp/notes.log")
	t.Setenv("CONFIG", "/etc/notes.yaml")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://api.notes.example", cfg.Adapter.Endpoint)
	assert.Equal(t, time.Minute, cfg.Adapter.DownloadTimeout)
	assert.True(t, cfg.Sync.Disabled)
	assert.Equal(t, "/tmp/notes.log", cfg.Log.File)
	assert.Equal(t, "/etc/notes.yaml", cfg.ConfigFilePath)
}

func TestParseEnv_SectionPrefixes(t *testing.T) {
	t.Setenv("APP_TOKEN", "env-token")
	t.Setenv("STORAGE_DB_DSN", "/var/notes/queue.db")
	t.Setenv("STORAGE_FILES_DIR", "/var/notes/files")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "env-token", cfg.App.Token)
	assert.Equal(t, "/var/notes/queue.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/var/notes/files", cfg.Storage.Files.Dir)
	assert.Empty(t, cfg.Adapter.Endpoint, "unset variables stay zero")
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "soon")

	err := parseEnv(&StructuredConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read client environment")
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-endpoint", "https://api.notes.example",
		"-token", "tkn",
		"-d", "queue.db",
		"-f", "files",
		"-download-timeout", "10s",
		"-max-failures", "7",
		"-log-level", "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://api.notes.example", cfg.Adapter.Endpoint)
	assert.Equal(t, "tkn", cfg.App.Token)
	assert.Equal(t, "queue.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "files", cfg.Storage.Files.Dir)
	assert.Equal(t, 10*time.Second, cfg.Adapter.DownloadTimeout)
	assert.Equal(t, 7, cfg.Sync.MaxFailures)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Sync.Disabled)
}

func TestParseFile_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "json",
			file: "config.json",
			body: `{"adapter": {"endpoint": "https://x.example", "request_timeout": "5s"}, "sync": {"max_failures": 2}}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			body: "adapter:\n  endpoint: https://x.example\n  request_timeout: 5s\nsync:\n  max_failures: 2\n",
		},
		{
			name: "toml",
			file: "config.toml",
			body: "[adapter]\nendpoint = \"https://x.example\"\nrequest_timeout = \"5s\"\n[sync]\nmax_failures = 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFile(writeTempConfig(t, tt.file, tt.body))
			require.NoError(t, err)

			assert.Equal(t, "https://x.example", cfg.Adapter.Endpoint)
			assert.Equal(t, 5*time.Second, cfg.Adapter.RequestTimeout)
			assert.Equal(t, 2, cfg.Sync.MaxFailures)
			assert.Empty(t, cfg.ConfigFilePath)
		})
	}
}

func TestParseFile_Malformed(t *testing.T) {
	_, err := parseFile(writeTempConfig(t, "config.json", `{"adapter":`))
	require.Error(t, err)
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			App:     ClientApp{Token: "t"},
			Adapter: ClientAdapter{Endpoint: "https://api.example", RequestTimeout: time.Second, DownloadTimeout: time.Second},
			Storage: ClientStorage{DB: ClientDB{DSN: "q.db"}, Files: ClientFiles{Dir: "files"}},
			Sync:    ClientSync{MaxFailures: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(c *ClientConfig) {}},
		{name: "memory dsn", mutate: func(c *ClientConfig) { c.Storage.DB.DSN = ":memory:" }, wantErr: ErrInvalidStorageConfigs},
		{name: "no files dir", mutate: func(c *ClientConfig) { c.Storage.Files.Dir = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "relative endpoint", mutate: func(c *ClientConfig) { c.Adapter.Endpoint = "api.example" }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero download timeout", mutate: func(c *ClientConfig) { c.Adapter.DownloadTimeout = 0 }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero max failures", mutate: func(c *ClientConfig) { c.Sync.MaxFailures = 0 }, wantErr: ErrInvalidSyncConfigs},
		{name: "no token", mutate: func(c *ClientConfig) { c.App.Token = "" }, wantErr: ErrInvalidAppConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

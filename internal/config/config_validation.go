// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net/url"
	"strings"
)

// validate checks that the merged [StructuredConfig] is internally
// consistent. Missing values are left to [ClientConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.RequestTimeout < 0 || cfg.Adapter.DownloadTimeout < 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Sync.MaxFailures < 0 {
		return ErrInvalidSyncConfigs
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.Files.Dir == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout == 0 || cfg.Adapter.DownloadTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}
	u, err := url.Parse(cfg.Adapter.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.MaxFailures < 1 {
		return ErrInvalidSyncConfigs
	}

	if cfg.App.Token == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}

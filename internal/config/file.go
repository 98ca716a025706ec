// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// parseFile reads a JSON, YAML or TOML config file with viper. The format is
// taken from the file extension. Durations accept Go duration strings
// ("30s", "1m").
func parseFile(path string) (*StructuredConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := new(StructuredConfig)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	cfg.ConfigFilePath = ""

	return cfg, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv reads the client environment into cfg. Variables are grouped by
// section prefix (APP_, ADAPTER_, STORAGE_, SYNC_, LOG_), so the queue path
// is STORAGE_DB_DSN and the bearer token is APP_TOKEN. Unset variables leave
// the zero value, which later sources override during the merge.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("read client environment: %w", err)
	}
	return nil
}

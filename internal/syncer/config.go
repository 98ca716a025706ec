// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncer

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-notes-sync/internal/config"
)

// DefaultDownloadTimeout bounds a single attachment download.
const DefaultDownloadTimeout = 30 * time.Second

// SyncConfig is the state shared between the syncers and the application.
// Every accessor takes the lock for a single field read or write only.
type SyncConfig struct {
	mu sync.RWMutex

	userID     *string
	enabled    bool
	runVersion int64

	endpoint        string
	proxy           string
	downloadTimeout time.Duration
}

// NewSyncConfig builds the shared handle from client settings. The user id
// starts unset.
func NewSyncConfig(adapterCfg config.ClientAdapter, syncCfg config.ClientSync) *SyncConfig {
	timeout := adapterCfg.DownloadTimeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}

	return &SyncConfig{
		enabled:         syncCfg.Enabled,
		endpoint:        adapterCfg.Endpoint,
		proxy:           adapterCfg.Proxy,
		downloadTimeout: timeout,
	}
}

// UserID returns the signed-in user id and whether one is set.
func (c *SyncConfig) UserID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.userID == nil {
		return "", false
	}
	return *c.userID, true
}

// SetUserID records the signed-in user.
func (c *SyncConfig) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = &id
}

// ClearUserID forgets the signed-in user (sign-out).
func (c *SyncConfig) ClearUserID() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = nil
}

// Enabled reports whether syncers should keep running.
func (c *SyncConfig) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled switches syncing on or off. Running loops observe the change
// between items.
func (c *SyncConfig) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// RunVersion returns the current run generation.
func (c *SyncConfig) RunVersion() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runVersion
}

// Restart starts a new run generation and returns it. Loops stamped with an
// older generation exit on their next tick.
func (c *SyncConfig) Restart() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runVersion++
	return c.runVersion
}

// Endpoint returns the home service URL.
func (c *SyncConfig) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// Proxy returns the configured outbound proxy, or "".
func (c *SyncConfig) Proxy() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proxy
}

// DownloadTimeout returns the per-download request timeout.
func (c *SyncConfig) DownloadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.downloadTimeout
}

// Package syncer contains the background synchronization engine of the
// client.
//
// A [Syncer] owns one synchronization responsibility and processes a batch of
// queued work per call to RunBatch. A [Scheduler] drives one syncer in its own
// loop: it sleeps for the syncer's poll delay, stops when syncing is disabled
// or a newer run generation was started, and otherwise runs the next batch.
// Failed batches are logged and retried on the next tick.
//
// All syncers share a single [SyncConfig] handle with the hosting
// application. Queue access goes through [store.Guard] and is never held
// across a network call.
package syncer

import (
	"context"
	"time"
)

// Syncer is one pollable synchronization unit.
type Syncer interface {
	// Name returns a stable identifier, e.g. "files:incoming".
	Name() string

	// PollDelay is the pause between two batches.
	PollDelay() time.Duration

	// IsEnabled reports whether syncing is currently switched on.
	IsEnabled() bool

	// SetRunVersion stamps the syncer with the generation it runs under.
	SetRunVersion(v int64)

	// RunVersion returns the stamped generation.
	RunVersion() int64

	// RunBatch processes zero or more queued items. It re-checks IsEnabled
	// between items and returns without error when syncing was disabled
	// mid-batch. The first item error aborts the batch; remaining items stay
	// queued for the next tick.
	RunBatch(ctx context.Context) error
}

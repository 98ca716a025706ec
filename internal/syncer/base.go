package syncer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/models"
)

// base holds the state every queue-driven syncer shares.
type base struct {
	cfg        *SyncConfig
	queue      *store.Guard
	runVersion atomic.Int64
}

func (b *base) IsEnabled() bool { return b.cfg.Enabled() }

func (b *base) SetRunVersion(v int64) { b.runVersion.Store(v) }

func (b *base) RunVersion() int64 { return b.runVersion.Load() }

// pending lists the queue records of typ in FIFO order.
func (b *base) pending(ctx context.Context, typ models.SyncType) ([]models.SyncRecord, error) {
	var records []models.SyncRecord
	err := b.queue.With(func(repo store.SyncRecordRepository) error {
		var err error
		records, err = repo.Find(ctx, typ)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", typ, err)
	}
	return records, nil
}

// complete removes a processed record.
func (b *base) complete(ctx context.Context, rec models.SyncRecord) error {
	err := b.queue.With(func(repo store.SyncRecordRepository) error {
		return repo.Delete(ctx, rec.ID)
	})
	if err != nil {
		return fmt.Errorf("delete sync record %s: %w", rec.ID, err)
	}
	return nil
}

// fail hands rec to the failure handler. Errors from the handler are logged;
// the caller keeps propagating the original failure.
func (b *base) fail(ctx context.Context, rec models.SyncRecord, cause error) {
	log := logger.FromContext(ctx)

	var updated models.SyncRecord
	err := b.queue.With(func(repo store.SyncRecordRepository) error {
		var err error
		updated, err = repo.HandleFailed(ctx, rec)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "syncer.fail").
			Str("id", rec.ID).
			Str("item_id", rec.ItemID).
			AnErr("cause", cause).
			Msg("failed to record sync failure")
		return
	}

	log.Debug().
		Str("func", "syncer.fail").
		Str("id", rec.ID).
		Int("errors", updated.Errors).
		Bool("frozen", updated.Frozen).
		Msg("sync failure recorded")
}

package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-notes-sync/internal/adapter"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/messaging"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/models"
)

// OutgoingName identifies the local change upload syncer.
const OutgoingName = "outgoing"

const (
	outgoingDelay = 1000 * time.Millisecond
	outgoingPath  = "/sync"
)

// outgoing pushes local changes to the home service. Changes may depend on
// each other (a note on a new board), so processing stops at the first
// frozen record.
type outgoing struct {
	base
	api      adapter.ServerAdapter
	notifier messaging.Notifier
}

// NewOutgoing returns the outgoing change syncer.
func NewOutgoing(cfg *SyncConfig, api adapter.ServerAdapter, storages *store.ClientStorages, notifier messaging.Notifier) Syncer {
	return &outgoing{
		base:     base{cfg: cfg, queue: storages.Queue},
		api:      api,
		notifier: notifier,
	}
}

func (s *outgoing) Name() string { return OutgoingName }

func (s *outgoing) PollDelay() time.Duration { return outgoingDelay }

func (s *outgoing) RunBatch(ctx context.Context) error {
	records, err := s.pending(ctx, models.SyncTypeOutgoing)
	if err != nil {
		return err
	}

	for _, rec := range OrderSensitive(records) {
		if err = s.push(ctx, rec); err != nil {
			return err
		}
		if !s.IsEnabled() {
			return nil
		}
	}
	return nil
}

func (s *outgoing) push(ctx context.Context, rec models.SyncRecord) error {
	log := logger.FromContext(ctx)

	if err := s.api.Post(ctx, outgoingPath, rec.ToOutgoingChange(), nil); err != nil {
		log.Err(err).
			Str("func", "outgoing.push").
			Str("item_id", rec.ItemID).
			Str("action", rec.Action).
			Msg("failed to push change")
		s.fail(ctx, rec, err)
		return fmt.Errorf("push %s %s %s: %w", rec.Action, rec.ItemType, rec.ItemID, err)
	}

	if err := s.complete(ctx, rec); err != nil {
		return err
	}

	event := models.OutgoingSyncedEvent{ItemID: rec.ItemID, ItemType: rec.ItemType, Action: rec.Action}
	if err := s.notifier.Notify(models.EventOutgoingSynced, event); err != nil {
		log.Warn().Err(err).
			Str("func", "outgoing.push").
			Str("item_id", rec.ItemID).
			Msg("failed to notify ui")
	}
	return nil
}

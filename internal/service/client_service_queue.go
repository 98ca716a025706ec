package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/models"
)

type clientQueueService struct {
	queue *store.Guard
}

// NewClientQueueService returns a [ClientQueueService] writing to the guarded
// sync queue of storages.
func NewClientQueueService(storages *store.ClientStorages) ClientQueueService {
	return &clientQueueService{queue: storages.Queue}
}

func (s *clientQueueService) QueueDownload(ctx context.Context, noteID string) (models.SyncRecord, error) {
	log := logger.FromContext(ctx)

	if noteID == "" {
		return models.SyncRecord{}, fmt.Errorf("%w: empty note id", ErrInvalidDataProvided)
	}

	var rec models.SyncRecord
	err := s.queue.With(func(repo store.SyncRecordRepository) error {
		existing, err := repo.FindByItem(ctx, models.SyncTypeFileIncoming, noteID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			rec = existing[0]
			return nil
		}

		rec, err = repo.Enqueue(ctx, models.SyncRecord{ItemID: noteID, Type: models.SyncTypeFileIncoming})
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "clientQueueService.QueueDownload").
			Str("item_id", noteID).
			Msg("failed to queue attachment download")
		return models.SyncRecord{}, fmt.Errorf("queue download: %w", err)
	}
	return rec, nil
}

func (s *clientQueueService) QueueChange(ctx context.Context, action, itemType string, rec models.ProtectedRecord) (models.SyncRecord, error) {
	log := logger.FromContext(ctx)

	if err := validateChange(action, itemType, rec); err != nil {
		return models.SyncRecord{}, err
	}

	data, err := rec.PublicView()
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("public view of %s: %w", rec.RecordID(), err)
	}

	var queued models.SyncRecord
	err = s.queue.With(func(repo store.SyncRecordRepository) error {
		var err error
		queued, err = repo.Enqueue(ctx, models.SyncRecord{
			ItemID:   rec.RecordID(),
			Type:     models.SyncTypeOutgoing,
			Action:   action,
			ItemType: itemType,
			Data:     data,
		})
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "clientQueueService.QueueChange").
			Str("item_id", rec.RecordID()).
			Str("action", action).
			Msg("failed to queue change")
		return models.SyncRecord{}, fmt.Errorf("queue change: %w", err)
	}
	return queued, nil
}

func (s *clientQueueService) Unfreeze(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty sync record id", ErrInvalidDataProvided)
	}
	return s.queue.With(func(repo store.SyncRecordRepository) error {
		return repo.Unfreeze(ctx, id)
	})
}

func (s *clientQueueService) Pending(ctx context.Context) ([]models.SyncRecord, error) {
	var records []models.SyncRecord
	err := s.queue.With(func(repo store.SyncRecordRepository) error {
		var err error
		records, err = repo.Find(ctx)
		return err
	})
	return records, err
}

func validateChange(action, itemType string, rec models.ProtectedRecord) error {
	switch action {
	case models.SyncActionAdd, models.SyncActionEdit, models.SyncActionDelete:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidDataProvided, action)
	}
	switch itemType {
	case models.ItemTypeSpace, models.ItemTypeBoard, models.ItemTypeNote:
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidDataProvided, itemType)
	}
	if rec == nil || rec.RecordID() == "" {
		return fmt.Errorf("%w: record without id", ErrInvalidDataProvided)
	}
	return nil
}

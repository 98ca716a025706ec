package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/models"
)

// syncRecordRepository is the SQLite-backed implementation of
// [SyncRecordRepository] over the "sync_records" table. The autoincrement
// seq column gives the FIFO order.
type syncRecordRepository struct {
	*DB
	policy FailurePolicy
	ids    IDGenerator
	logger *logger.Logger
}

// NewSyncRecordRepository constructs a [SyncRecordRepository] backed by db.
func NewSyncRecordRepository(db *DB, policy FailurePolicy, ids IDGenerator, logger *logger.Logger) SyncRecordRepository {
	return &syncRecordRepository{
		DB:     db,
		policy: policy,
		ids:    ids,
		logger: logger,
	}
}

func (r *syncRecordRepository) Find(ctx context.Context, types ...models.SyncType) ([]models.SyncRecord, error) {
	query, args, err := buildFindQuery(types...)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "syncRecordRepository.Find", query, args)
}

func (r *syncRecordRepository) FindByItem(ctx context.Context, typ models.SyncType, itemID string) ([]models.SyncRecord, error) {
	query, args, err := buildFindByItemQuery(typ, itemID)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "syncRecordRepository.FindByItem", query, args)
}

func (r *syncRecordRepository) Enqueue(ctx context.Context, rec models.SyncRecord) (models.SyncRecord, error) {
	log := logger.FromContext(ctx)

	if rec.ID == "" {
		rec.ID = r.ids.Generate()
	}
	if rec.CreatedAt == nil {
		rec.CreatedAt = now()
	}

	query, args, err := buildInsertQuery(rec)
	if err != nil {
		return models.SyncRecord{}, err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "syncRecordRepository.Enqueue").
			Str("item_id", rec.ItemID).
			Str("type", string(rec.Type)).
			Msg("failed to insert sync record")
		return models.SyncRecord{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return rec, nil
}

func (r *syncRecordRepository) Delete(ctx context.Context, id string) error {
	query, args, err := buildDeleteQuery(id)
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncRecordRepository.Delete").
			Str("id", id).
			Msg("failed to delete sync record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *syncRecordRepository) HandleFailed(ctx context.Context, rec models.SyncRecord) (models.SyncRecord, error) {
	log := logger.FromContext(ctx)

	incQuery, incArgs, err := buildIncrementErrorsQuery(rec.ID)
	if err != nil {
		return rec, err
	}
	freezeQuery, freezeArgs, err := buildFreezeQuery(rec.ID)
	if err != nil {
		return rec, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "syncRecordRepository.HandleFailed").
			Str("id", rec.ID).
			Msg("failed to begin transaction")
		return rec, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var failures int
	if err = tx.QueryRowContext(ctx, incQuery, incArgs...).Scan(&failures); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrSyncRecordNotFound
		}
		log.Err(err).
			Str("func", "syncRecordRepository.HandleFailed").
			Str("id", rec.ID).
			Msg("failed to increment failure count")
		return rec, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	frozen := rec.Frozen || r.policy.ShouldFreeze(failures)
	if frozen && !rec.Frozen {
		if _, err = tx.ExecContext(ctx, freezeQuery, freezeArgs...); err != nil {
			log.Err(err).
				Str("func", "syncRecordRepository.HandleFailed").
				Str("id", rec.ID).
				Msg("failed to freeze sync record")
			return rec, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "syncRecordRepository.HandleFailed").
			Str("id", rec.ID).
			Msg("failed to commit transaction")
		return rec, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	rec.Errors = failures
	rec.Frozen = frozen
	if frozen {
		log.Warn().
			Str("func", "syncRecordRepository.HandleFailed").
			Str("id", rec.ID).
			Str("item_id", rec.ItemID).
			Int("errors", failures).
			Msg("sync record frozen")
	}
	return rec, nil
}

func (r *syncRecordRepository) Unfreeze(ctx context.Context, id string) error {
	query, args, err := buildUnfreezeQuery(id)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncRecordRepository.Unfreeze").
			Str("id", id).
			Msg("failed to unfreeze sync record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSyncRecordNotFound
	}
	return nil
}

func (r *syncRecordRepository) query(ctx context.Context, fn, query string, args []any) ([]models.SyncRecord, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to query sync records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.SyncRecord
	for rows.Next() {
		var (
			rec  models.SyncRecord
			typ  string
			data []byte
		)
		if err = rows.Scan(
			&rec.ID,
			&rec.ItemID,
			&typ,
			&rec.Action,
			&rec.ItemType,
			&data,
			&rec.Frozen,
			&rec.Errors,
			&rec.CreatedAt,
		); err != nil {
			log.Err(err).Str("func", fn).Msg("failed to scan sync record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		rec.Type = models.SyncType(typ)
		if len(data) > 0 {
			rec.Data = data
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", fn).Msg("error iterating sync record rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

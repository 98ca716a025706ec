// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-notes-sync/models"
)

const syncRecordsTable = "sync_records"

var syncRecordColumns = []string{
	"id",
	"item_id",
	"type",
	"action",
	"item_type",
	"data",
	"frozen",
	"errors",
	"created_at",
}

// buildFindQuery selects records of the given types in insertion order.
func buildFindQuery(types ...models.SyncType) (string, []any, error) {
	q := sq.Select(syncRecordColumns...).
		From(syncRecordsTable).
		OrderBy("seq ASC")

	if len(types) > 0 {
		q = q.Where(sq.Eq{"type": typeStrings(types)})
	}

	return toSQL(q)
}

func buildFindByItemQuery(typ models.SyncType, itemID string) (string, []any, error) {
	q := sq.Select(syncRecordColumns...).
		From(syncRecordsTable).
		Where(sq.Eq{"type": string(typ), "item_id": itemID}).
		OrderBy("seq ASC")

	return toSQL(q)
}

func buildInsertQuery(rec models.SyncRecord) (string, []any, error) {
	q := sq.Insert(syncRecordsTable).
		Columns(syncRecordColumns...).
		Values(
			rec.ID,
			rec.ItemID,
			string(rec.Type),
			rec.Action,
			rec.ItemType,
			[]byte(rec.Data),
			rec.Frozen,
			rec.Errors,
			*rec.CreatedAt,
		)

	return toSQL(q)
}

func buildDeleteQuery(id string) (string, []any, error) {
	return toSQL(sq.Delete(syncRecordsTable).Where(sq.Eq{"id": id}))
}

// buildIncrementErrorsQuery bumps the failure count and returns the new one.
func buildIncrementErrorsQuery(id string) (string, []any, error) {
	q := sq.Update(syncRecordsTable).
		Set("errors", sq.Expr("errors + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING errors")

	return toSQL(q)
}

func buildFreezeQuery(id string) (string, []any, error) {
	return toSQL(sq.Update(syncRecordsTable).Set("frozen", true).Where(sq.Eq{"id": id}))
}

func buildUnfreezeQuery(id string) (string, []any, error) {
	q := sq.Update(syncRecordsTable).
		Set("frozen", false).
		Set("errors", 0).
		Where(sq.Eq{"id": id})

	return toSQL(q)
}

type sqlizer interface {
	ToSql() (string, []any, error)
}

func toSQL(q sqlizer) (string, []any, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func typeStrings(types []models.SyncType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}

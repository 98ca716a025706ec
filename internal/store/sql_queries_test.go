package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-notes-sync/models"
)

func TestBuildFindQuery(t *testing.T) {
	tests := []struct {
		name     string
		types    []models.SyncType
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "all types",
			wantSQL: "SELECT id, item_id, type, action, item_type, data, frozen, errors, created_at FROM sync_records ORDER BY seq ASC",
		},
		{
			name:     "single type",
			types:    []models.SyncType{models.SyncTypeOutgoing},
			wantSQL:  "SELECT id, item_id, type, action, item_type, data, frozen, errors, created_at FROM sync_records WHERE type IN (?) ORDER BY seq ASC",
			wantArgs: []any{"outgoing"},
		},
		{
			name:     "several types",
			types:    []models.SyncType{models.SyncTypeOutgoing, models.SyncTypeFileIncoming},
			wantSQL:  "SELECT id, item_id, type, action, item_type, data, frozen, errors, created_at FROM sync_records WHERE type IN (?,?) ORDER BY seq ASC",
			wantArgs: []any{"outgoing", "file:incoming"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildFindQuery(tt.types...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildFindByItemQuery(t *testing.T) {
	query, args, err := buildFindByItemQuery(models.SyncTypeFileIncoming, "n1")
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE item_id = ? AND type = ?")
	assert.Equal(t, []any{"n1", "file:incoming"}, args)
}

func TestBuildInsertQuery(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := models.SyncRecord{
		ID:        "q1",
		ItemID:    "n1",
		Type:      models.SyncTypeOutgoing,
		Action:    models.SyncActionEdit,
		ItemType:  models.ItemTypeNote,
		Data:      []byte(`{}`),
		CreatedAt: &created,
	}

	query, args, err := buildInsertQuery(rec)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO sync_records (id,item_id,type,action,item_type,data,frozen,errors,created_at) VALUES (?,?,?,?,?,?,?,?,?)", query)
	require.Len(t, args, 9)
	assert.Equal(t, "outgoing", args[2])
	assert.Equal(t, []byte(`{}`), args[5])
	assert.Equal(t, created, args[8])
}

func TestBuildMutationQueries(t *testing.T) {
	tests := []struct {
		name    string
		build   func(string) (string, []any, error)
		wantSQL string
	}{
		{"delete", buildDeleteQuery, "DELETE FROM sync_records WHERE id = ?"},
		{"increment", buildIncrementErrorsQuery, "UPDATE sync_records SET errors = errors + 1 WHERE id = ? RETURNING errors"},
		{"freeze", buildFreezeQuery, "UPDATE sync_records SET frozen = ? WHERE id = ?"},
		{"unfreeze", buildUnfreezeQuery, "UPDATE sync_records SET frozen = ?, errors = ? WHERE id = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.build("q1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, "q1", args[len(args)-1])
		})
	}
}

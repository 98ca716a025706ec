package store

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-notes-sync/internal/config"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/models"
)

func TestUserDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		userID  string
		want    string
		wantErr error
	}{
		{name: "file with extension", dsn: "data/notes-sync.db", userID: "u1", want: "data/notes-sync-u1.db"},
		{name: "file without extension", dsn: "/var/lib/queue", userID: "u1", want: "/var/lib/queue-u1"},
		{name: "dotted directory", dsn: "/opt/v1.2/queue.db", userID: "u1", want: "/opt/v1.2/queue-u1.db"},
		{name: "query kept", dsn: "file:queue.db?_busy_timeout=5000", userID: "u1", want: "file:queue-u1.db?_busy_timeout=5000"},
		{name: "traversal user", dsn: "queue.db", userID: "../u1", wantErr: ErrInvalidID},
		{name: "empty user", dsn: "queue.db", userID: "", wantErr: ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserDSN(tt.dsn, tt.userID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestStorages(t *testing.T) (*ClientStorages, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewClientStorages(
		config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(dir, "queue.db")}, Files: config.ClientFiles{Dir: "/files"}},
		config.ClientSync{MaxFailures: 3},
		afero.NewMemMapFs(),
		logger.Nop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func pendingFor(t *testing.T, s *ClientStorages) []models.SyncRecord {
	t.Helper()
	var records []models.SyncRecord
	require.NoError(t, s.Queue.With(func(repo SyncRecordRepository) error {
		var err error
		records, err = repo.Find(testContext())
		return err
	}))
	return records
}

func TestClientStorages_QueuePerUser(t *testing.T) {
	s, dir := newTestStorages(t)
	ctx := testContext()

	assert.False(t, s.Queue.Attached(), "queue is detached until a user signs in")

	require.NoError(t, s.OpenUser(ctx, "alice"))
	require.NoError(t, s.Queue.With(func(repo SyncRecordRepository) error {
		_, err := repo.Enqueue(ctx, models.SyncRecord{ItemID: "alice-note", Type: models.SyncTypeFileIncoming})
		return err
	}))
	require.NoError(t, s.CloseUser())
	assert.False(t, s.Queue.Attached())

	require.NoError(t, s.OpenUser(ctx, "bob"))
	assert.Empty(t, pendingFor(t, s))

	// switching users without an explicit close also swaps the queue
	require.NoError(t, s.OpenUser(ctx, "alice"))
	records := pendingFor(t, s)
	require.Len(t, records, 1)
	assert.Equal(t, "alice-note", records[0].ItemID)

	assert.FileExists(t, filepath.Join(dir, "queue-alice.db"))
	assert.FileExists(t, filepath.Join(dir, "queue-bob.db"))
}

func TestClientStorages_OpenUserInvalidID(t *testing.T) {
	s, _ := newTestStorages(t)

	err := s.OpenUser(testContext(), "../alice")
	require.ErrorIs(t, err, ErrInvalidID)
	assert.False(t, s.Queue.Attached())
}

func TestNewClientStorages_EmptyDSN(t *testing.T) {
	_, err := NewClientStorages(config.ClientStorage{}, config.ClientSync{}, afero.NewMemMapFs(), logger.Nop())
	require.Error(t, err)
}

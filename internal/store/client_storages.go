package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-notes-sync/internal/config"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/utils"
)

// ClientStorages groups all client-side storage into a single value that can
// be passed to syncers and services.
//
// Every user gets a separate queue database. The queue stays detached until
// [ClientStorages.OpenUser] is called at sign-in.
type ClientStorages struct {
	// Queue guards the SQLite-backed sync queue of the signed-in user.
	Queue *Guard

	// Attachments stores downloaded attachment files.
	Attachments AttachmentStorage

	cfg     config.ClientStorage
	syncCfg config.ClientSync
	logger  *logger.Logger

	mu sync.Mutex
	db *DB
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. The attachment storage is built on fs rooted at
// cfg.Files.Dir; the queue starts detached.
func NewClientStorages(cfg config.ClientStorage, syncCfg config.ClientSync, fs afero.Fs, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("empty queue database dsn")
	}

	return &ClientStorages{
		Queue:       NewGuard(nil),
		Attachments: NewAttachmentStorage(fs, cfg.Files.Dir),
		cfg:         cfg,
		syncCfg:     syncCfg,
		logger:      logger,
	}, nil
}

// OpenUser closes the queue of the previous user, if any, and attaches the
// queue of userID. It performs the following steps:
//  1. Derives the user database path with [UserDSN].
//  2. Opens an SQLite connection and runs pending migrations via [DB.Migrate].
//  3. Wraps a fresh [SyncRecordRepository] and attaches it to the [Guard].
func (s *ClientStorages) OpenUser(ctx context.Context, userID string) error {
	dsn, err := UserDSN(s.cfg.DB.DSN, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.closeUser(); err != nil {
		return err
	}

	db, err := NewConnectSQLite(ctx, config.ClientDB{DSN: dsn}, s.logger)
	if err != nil {
		return fmt.Errorf("sqlite connection error: %w", err)
	}
	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return fmt.Errorf("migration failed: %w", err)
	}

	repo := NewSyncRecordRepository(db, NewMaxFailuresPolicy(s.syncCfg.MaxFailures), utils.NewUUIDGenerator(), s.logger)
	s.Queue.Attach(repo)
	s.db = db

	s.logger.Debug().Str("func", "ClientStorages.OpenUser").Str("user_id", userID).Msg("user queue attached")
	return nil
}

// CloseUser detaches the queue and closes the database of the current user.
func (s *ClientStorages) CloseUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeUser()
}

func (s *ClientStorages) closeUser() error {
	s.Queue.Detach()
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("close user queue: %w", err)
	}
	return nil
}

// Close detaches the queue and closes the database.
func (s *ClientStorages) Close() error {
	return s.CloseUser()
}

// UserDSN derives the queue database of userID from the configured dsn by
// suffixing the file name: "data/notes-sync.db" becomes
// "data/notes-sync-<user_id>.db". A query string is kept as is.
func UserDSN(dsn, userID string) (string, error) {
	if err := validateID(userID); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	if dsn == "" {
		return "", fmt.Errorf("empty queue database dsn")
	}

	path, query, hasQuery := strings.Cut(dsn, "?")
	ext := filepath.Ext(path)
	path = strings.TrimSuffix(path, ext) + "-" + userID + ext

	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-notes-sync/internal/adapter"
	"github.com/MKhiriev/go-notes-sync/internal/config"
	"github.com/MKhiriev/go-notes-sync/internal/crypto"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/messaging"
	"github.com/MKhiriev/go-notes-sync/internal/profile"
	"github.com/MKhiriev/go-notes-sync/internal/service"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/internal/syncer"
	"github.com/MKhiriev/go-notes-sync/internal/workers"
)

// ErrSignedOut is returned by operations that need a signed-in user.
var ErrSignedOut = errors.New("no user signed in")

type App struct {
	api      adapter.ServerAdapter
	storages *store.ClientStorages
	bus      *messaging.Bus
	sync     *syncer.SyncConfig
	cipher   crypto.Cipher
	logger   *logger.Logger

	mu       sync.Mutex
	services *service.ClientServices
	profile  *profile.Profile

	// syncMu serializes whole start/stop sequences of the worker pool.
	syncMu sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp wires the sync core around already built transport and storage.
// When api carries a token, its subject becomes the signed-in user and that
// user's queue is opened.
func NewApp(ctx context.Context, cfg *config.ClientConfig, api adapter.ServerAdapter, storages *store.ClientStorages, bus *messaging.Bus, log *logger.Logger) (*App, error) {
	if cfg == nil || api == nil || storages == nil || bus == nil {
		return nil, fmt.Errorf("client app: missing dependency")
	}

	a := &App{
		api:      api,
		storages: storages,
		bus:      bus,
		sync:     syncer.NewSyncConfig(cfg.Adapter, cfg.Sync),
		cipher:   crypto.NewCipher(),
		logger:   log,
	}

	if api.Token() != "" {
		userID, err := api.UserID()
		if err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		}
		if err = a.signIn(ctx, userID); err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		}
	}

	return a, nil
}

// Run starts background syncing and blocks until ctx is done. Storage and
// the event bus are closed on return.
func (a *App) Run(ctx context.Context) error {
	ctx = a.logger.WithContext(ctx)

	a.logger.Info().Str("func", "App.Run").Msg("client started")
	a.StartSync(ctx)

	<-ctx.Done()

	a.StopSync()
	a.bus.Close()
	if err := a.storages.Close(); err != nil {
		return fmt.Errorf("close storages: %w", err)
	}

	a.logger.Info().Str("func", "App.Run").Msg("client stopped")
	return nil
}

// StartSync stops running loops, bumps the run generation and starts one
// scheduler per syncer. It does nothing while syncing is disabled.
func (a *App) StartSync(ctx context.Context) {
	a.syncMu.Lock()
	defer a.syncMu.Unlock()

	a.stopSync()

	if !a.sync.Enabled() {
		a.logger.Info().Str("func", "App.StartSync").Msg("syncing is disabled")
		return
	}

	version := a.sync.Restart()
	pool := workers.NewWorkers(
		syncer.NewScheduler(syncer.NewOutgoing(a.sync, a.api, a.storages, a.bus), a.sync, a.logger),
		syncer.NewScheduler(syncer.NewFilesIncoming(a.sync, a.api, a.storages, a.bus), a.sync, a.logger),
	)

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.wg.Add(1)

	a.logger.Info().
		Str("func", "App.StartSync").
		Int64("run_version", version).
		Int("syncers", pool.Len()).
		Msg("sync started")

	go func() {
		defer a.wg.Done()
		if err := pool.Run(runCtx); err != nil {
			a.logger.Err(err).Str("func", "App.StartSync").Msg("sync workers failed")
		}
	}()
}

// StopSync cancels the running loops and waits for them to exit. Safe to
// call when nothing runs.
func (a *App) StopSync() {
	a.syncMu.Lock()
	defer a.syncMu.Unlock()
	a.stopSync()
}

func (a *App) stopSync() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.wg.Wait()
}

// SetSyncEnabled switches syncing. Disabling lets running loops exit at
// their next tick; enabling starts a fresh generation.
func (a *App) SetSyncEnabled(ctx context.Context, enabled bool) {
	a.sync.SetEnabled(enabled)
	if enabled {
		a.StartSync(ctx)
	}
}

// SignIn stores token, derives the user key and attaches the sync queue of
// the user, replacing the queue and keys of any previous user.
func (a *App) SignIn(ctx context.Context, token, masterPassword string, salt []byte) error {
	a.StopSync()

	a.api.SetToken(token)
	userID, err := a.api.UserID()
	if err != nil {
		a.api.SetToken("")
		return fmt.Errorf("sign in: %w", err)
	}

	if err = a.signIn(ctx, userID); err != nil {
		a.SignOut()
		return fmt.Errorf("sign in: %w", err)
	}
	a.Services().KeyService.Unlock(masterPassword, salt)

	a.logger.Info().Str("func", "App.SignIn").Str("user_id", userID).Msg("signed in")
	a.StartSync(ctx)
	return nil
}

// SignOut stops syncing, wipes cached keys and closes the user's queue so no
// syncer can touch the previous user's records.
func (a *App) SignOut() {
	a.StopSync()
	a.sync.ClearUserID()
	a.api.SetToken("")

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile != nil {
		a.profile.Clear()
	}
	a.profile = nil
	a.services = nil
	if err := a.storages.CloseUser(); err != nil {
		a.logger.Err(err).Str("func", "App.SignOut").Msg("failed to close user queue")
	}

	a.logger.Info().Str("func", "App.SignOut").Msg("signed out")
}

// Services returns the services of the signed-in user, nil when signed out.
func (a *App) Services() *service.ClientServices {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.services
}

// Subscribe registers a UI listener on the event bus.
func (a *App) Subscribe(buffer int) (<-chan messaging.Message, func()) {
	return a.bus.Subscribe(buffer)
}

// QueueDownload schedules the attachment of noteID for the signed-in user.
func (a *App) QueueDownload(ctx context.Context, noteID string) error {
	svcs := a.Services()
	if svcs == nil {
		return ErrSignedOut
	}
	_, err := svcs.QueueService.QueueDownload(ctx, noteID)
	return err
}

func (a *App) signIn(ctx context.Context, userID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.storages.OpenUser(ctx, userID); err != nil {
		return err
	}
	a.sync.SetUserID(userID)

	if a.profile != nil {
		a.profile.Clear()
	}
	a.profile = profile.New(userID)
	a.services = service.NewClientServices(a.storages, a.profile, a.cipher)
	return nil
}

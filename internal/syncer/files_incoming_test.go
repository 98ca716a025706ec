// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-notes-sync/internal/adapter"
	"github.com/MKhiriev/go-notes-sync/internal/config"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/mock"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/models"
)

const testToken = "secret-token"

// remote fakes the home service and a foreign object store.
type remote struct {
	home *httptest.Server
	cdn  *httptest.Server

	mu        sync.Mutex
	locations map[string]string
	contents  map[string][]byte
	auth      map[string]string
	requests  atomic.Int32
}

func newRemote(t *testing.T) *remote {
	t.Helper()
	r := &remote{
		locations: map[string]string{},
		contents:  map[string][]byte{},
		auth:      map[string]string{},
	}

	home := chi.NewRouter()
	home.Use(r.count)
	home.Get("/notes/{id}/attachment", r.serveLocation)
	home.Get("/files/{id}", r.serveFile)
	home.Get("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.home = httptest.NewServer(home)
	t.Cleanup(r.home.Close)

	cdn := chi.NewRouter()
	cdn.Use(r.count)
	cdn.Get("/blob/{id}", r.serveFile)
	r.cdn = httptest.NewServer(cdn)
	t.Cleanup(r.cdn.Close)

	return r
}

func (r *remote) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.requests.Add(1)
		next.ServeHTTP(w, req)
	})
}

func (r *remote) serveLocation(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	loc, ok := r.locations[chi.URLParam(req, "id")]
	r.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loc)
}

func (r *remote) serveFile(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	r.mu.Lock()
	r.auth[id] = req.Header.Get("Authorization")
	body, ok := r.contents[id]
	r.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(body)
}

func (r *remote) put(itemID, location string, content []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[itemID] = location
	if content != nil {
		r.contents[itemID] = content
	}
}

func (r *remote) authFor(itemID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.auth[itemID]
	return v, ok
}

type filesFixture struct {
	remote   *remote
	api      adapter.ServerAdapter
	cfg      *SyncConfig
	repo     *mock.MockSyncRecordRepository
	notifier *mock.MockNotifier
	fs       afero.Fs
	storages *store.ClientStorages
	syncer   Syncer
}

func newFilesFixture(t *testing.T) *filesFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	fx := &filesFixture{
		remote:   newRemote(t),
		repo:     mock.NewMockSyncRecordRepository(ctrl),
		notifier: mock.NewMockNotifier(ctrl),
		fs:       afero.NewMemMapFs(),
	}

	fx.api = mustAdapter(t, fx.remote.home.URL)

	fx.cfg = NewSyncConfig(
		config.ClientAdapter{Endpoint: fx.remote.home.URL, DownloadTimeout: 5 * time.Second},
		config.ClientSync{Enabled: true},
	)
	fx.cfg.SetUserID("u1")

	fx.storages = &store.ClientStorages{
		Queue:       store.NewGuard(fx.repo),
		Attachments: store.NewAttachmentStorage(fx.fs, "/files"),
	}
	fx.syncer = NewFilesIncoming(fx.cfg, fx.api, fx.storages, fx.notifier)
	return fx
}

func (fx *filesFixture) readFile(t *testing.T, userID, itemID string) []byte {
	t.Helper()
	data, err := afero.ReadFile(fx.fs, "/files/"+userID+"/"+itemID+".enc")
	require.NoError(t, err)
	return data
}

func fileRecord(id, itemID string, frozen bool) models.SyncRecord {
	return models.SyncRecord{ID: id, ItemID: itemID, Type: models.SyncTypeFileIncoming, Frozen: frozen}
}

func payload(size int) []byte {
	return bytes.Repeat([]byte("0123456789abcdef"), size/16+1)[:size]
}

func TestFilesIncoming_Contract(t *testing.T) {
	fx := newFilesFixture(t)

	assert.Equal(t, "files:incoming", fx.syncer.Name())
	assert.Equal(t, time.Second, fx.syncer.PollDelay())
	assert.True(t, fx.syncer.IsEnabled())

	fx.syncer.SetRunVersion(7)
	assert.Equal(t, int64(7), fx.syncer.RunVersion())
}

func TestFilesIncoming_SuccessDeletesAndNotifiesOnce(t *testing.T) {
	fx := newFilesFixture(t)
	content := payload(10_000)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", content)

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), models.SyncTypeFileIncoming).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil).Times(1)
	fx.notifier.EXPECT().
		Notify(models.EventFileDownloaded, models.FileDownloadedEvent{ItemID: "n1"}).
		Return(nil).
		Times(1)

	require.NoError(t, fx.syncer.RunBatch(context.Background()))
	assert.Equal(t, content, fx.readFile(t, "u1", "n1"))
}

func TestFilesIncoming_AuthOnlyForHomeHost(t *testing.T) {
	tests := []struct {
		name     string
		location func(r *remote) string
		wantAuth string
	}{
		{
			name:     "home host gets credentials",
			location: func(r *remote) string { return r.home.URL + "/files/n1" },
			wantAuth: "Bearer " + testToken,
		},
		{
			name:     "relative url resolves to home",
			location: func(*remote) string { return "/files/n1" },
			wantAuth: "Bearer " + testToken,
		},
		{
			name:     "foreign host gets none",
			location: func(r *remote) string { return r.cdn.URL + "/blob/n1" },
			wantAuth: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFilesFixture(t)
			fx.remote.put("n1", tt.location(fx.remote), []byte("attachment"))

			rec := fileRecord("r1", "n1", false)
			fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
			fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil)
			fx.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

			require.NoError(t, fx.syncer.RunBatch(context.Background()))

			got, seen := fx.remote.authFor("n1")
			require.True(t, seen, "download request was not made")
			assert.Equal(t, tt.wantAuth, got)
		})
	}
}

func TestFilesIncoming_RejectionKeepsRecord(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", nil)

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(models.SyncRecord{ID: "r1", Errors: 1}, nil).Times(1)

	err := fx.syncer.RunBatch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteRejected)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.Status)
	assert.Equal(t, map[string]any{"error": "not found"}, remoteErr.Body)
}

func TestFilesIncoming_RejectionWithTextBody(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/broken", nil)

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(rec, nil)

	err := fx.syncer.RunBatch(context.Background())

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusInternalServerError, remoteErr.Status)
	assert.Equal(t, "boom\n", remoteErr.Body)
}

func TestFilesIncoming_MetadataFailureCallsHandler(t *testing.T) {
	fx := newFilesFixture(t)

	rec := fileRecord("r1", "unknown", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(rec, nil).Times(1)

	err := fx.syncer.RunBatch(context.Background())
	assert.ErrorIs(t, err, adapter.ErrNotFound)
}

// shortFile drops the last byte of its first write.
type shortFile struct {
	afero.File
	writes *atomic.Int32
}

func (f shortFile) Write(p []byte) (int, error) {
	f.writes.Add(1)
	return f.File.Write(p[:len(p)-1])
}

type shortStorage struct {
	store.AttachmentStorage
	writes atomic.Int32
}

func (s *shortStorage) Create(userID, itemID string) (afero.File, error) {
	f, err := s.AttachmentStorage.Create(userID, itemID)
	if err != nil {
		return nil, err
	}
	return shortFile{File: f, writes: &s.writes}, nil
}

func TestFilesIncoming_ShortWriteIsIntegrityError(t *testing.T) {
	fx := newFilesFixture(t)
	short := &shortStorage{AttachmentStorage: fx.storages.Attachments}
	fx.storages.Attachments = short
	fx.syncer = NewFilesIncoming(fx.cfg, fx.api, fx.storages, fx.notifier)

	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", payload(3*downloadChunkSize))

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(rec, nil).Times(1)

	err := fx.syncer.RunBatch(context.Background())
	require.ErrorIs(t, err, ErrIntegrity)

	var shortErr *ShortWriteError
	require.True(t, errors.As(err, &shortErr))
	assert.Equal(t, shortErr.Read-1, shortErr.Written)
	assert.LessOrEqual(t, shortErr.Read, downloadChunkSize)
	assert.Equal(t, int32(1), short.writes.Load(), "no writes after the short one")
}

func mustAdapter(t *testing.T, endpoint string) adapter.ServerAdapter {
	t.Helper()
	api, err := adapter.NewHTTPServerAdapter(
		config.ClientAdapter{Endpoint: endpoint, RequestTimeout: 5 * time.Second},
		config.ClientApp{Token: testToken},
		logger.Nop(),
	)
	require.NoError(t, err)
	return api
}

func TestFilesIncoming_MissingUserFailsBeforeNetwork(t *testing.T) {
	fx := newFilesFixture(t)
	fx.cfg.ClearUserID()

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)

	err := fx.syncer.RunBatch(context.Background())
	require.ErrorIs(t, err, ErrMissingField)

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "SyncConfig.user_id", missing.Field)
	assert.Zero(t, fx.remote.requests.Load())
}

func TestFilesIncoming_InvalidPathFailsBeforeNetwork(t *testing.T) {
	fx := newFilesFixture(t)

	rec := fileRecord("r1", "../escape", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(rec, nil).Times(1)

	err := fx.syncer.RunBatch(context.Background())
	require.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, err, store.ErrInvalidID)

	var pathErr *InvalidPathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "u1", pathErr.UserID)
	assert.Equal(t, "../escape", pathErr.ItemID)
	assert.Zero(t, fx.remote.requests.Load())
}

func TestFilesIncoming_SkipsFrozenRecords(t *testing.T) {
	fx := newFilesFixture(t)
	for _, id := range []string{"n1", "n2", "n3"} {
		fx.remote.put(id, fx.remote.home.URL+"/files/"+id, []byte("content of "+id))
	}

	r1 := fileRecord("r1", "n1", false)
	r2 := fileRecord("r2", "n2", true)
	r3 := fileRecord("r3", "n3", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{r1, r2, r3}, nil)

	gomock.InOrder(
		fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil),
		fx.repo.EXPECT().Delete(gomock.Any(), "r3").Return(nil),
	)
	fx.notifier.EXPECT().Notify(models.EventFileDownloaded, models.FileDownloadedEvent{ItemID: "n1"}).Return(nil)
	fx.notifier.EXPECT().Notify(models.EventFileDownloaded, models.FileDownloadedEvent{ItemID: "n3"}).Return(nil)

	require.NoError(t, fx.syncer.RunBatch(context.Background()))

	_, seen := fx.remote.authFor("n2")
	assert.False(t, seen, "frozen record must not be downloaded")
	assert.Equal(t, []byte("content of n3"), fx.readFile(t, "u1", "n3"))
}

func TestFilesIncoming_FirstErrorAbortsBatch(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", nil)
	fx.remote.put("n2", fx.remote.home.URL+"/files/n2", []byte("ok"))

	r1 := fileRecord("r1", "n1", false)
	r2 := fileRecord("r2", "n2", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{r1, r2}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), r1).Return(r1, nil)

	require.Error(t, fx.syncer.RunBatch(context.Background()))

	_, seen := fx.remote.authFor("n2")
	assert.False(t, seen, "remaining items stay queued")
}

func TestFilesIncoming_StopsWhenDisabledMidBatch(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", []byte("one"))
	fx.remote.put("n2", fx.remote.home.URL+"/files/n2", []byte("two"))

	r1 := fileRecord("r1", "n1", false)
	r2 := fileRecord("r2", "n2", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{r1, r2}, nil)
	fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil)
	fx.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(string, any) error {
		fx.cfg.SetEnabled(false)
		return nil
	})

	require.NoError(t, fx.syncer.RunBatch(context.Background()))

	_, seen := fx.remote.authFor("n2")
	assert.False(t, seen)
}

func TestFilesIncoming_RerunAfterSuccessIsNoop(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", []byte("once"))

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil).Times(1)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil).Times(1)
	fx.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	require.NoError(t, fx.syncer.RunBatch(context.Background()))
	before := fx.remote.requests.Load()

	require.NoError(t, fx.syncer.RunBatch(context.Background()))
	assert.Equal(t, before, fx.remote.requests.Load())
}

func TestFilesIncoming_NotifyFailureStillSucceeds(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", []byte("x"))

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().Delete(gomock.Any(), "r1").Return(nil)
	fx.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("bus closed"))

	assert.NoError(t, fx.syncer.RunBatch(context.Background()))
}

func TestFilesIncoming_DetachedStorage(t *testing.T) {
	fx := newFilesFixture(t)
	fx.storages.Queue.Detach()

	err := fx.syncer.RunBatch(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageDetached)
}

func TestFilesIncoming_HandlerErrorKeepsDownloadError(t *testing.T) {
	fx := newFilesFixture(t)
	fx.remote.put("n1", fx.remote.home.URL+"/files/n1", nil)

	rec := fileRecord("r1", "n1", false)
	fx.repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return([]models.SyncRecord{rec}, nil)
	fx.repo.EXPECT().HandleFailed(gomock.Any(), rec).Return(rec, store.ErrSyncRecordNotFound)

	err := fx.syncer.RunBatch(context.Background())
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestIsHomeHost(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		endpoint string
		want     bool
	}{
		{"same host and port", "http://api.example.com:8080/f/1", "http://api.example.com:8080", true},
		{"case insensitive", "https://API.example.com/f/1", "https://api.example.com", true},
		{"endpoint without scheme", "http://api.example.com/f", "api.example.com", true},
		{"different port", "http://api.example.com:9090/f", "http://api.example.com:8080", false},
		{"lookalike host", "https://api.example.com.evil.io/f", "https://api.example.com", false},
		{"endpoint in path", "https://cdn.io/api.example.com/f", "https://api.example.com", false},
		{"empty endpoint", "https://api.example.com/f", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, IsHomeHost(u, tt.endpoint))
		})
	}
}

func TestCopyChunks(t *testing.T) {
	src := payload(2*downloadChunkSize + 100)
	var dst bytes.Buffer

	n, err := copyChunks(&dst, bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, src, dst.Bytes())
}

// chunkRecorder records the size of every write.
type chunkRecorder struct{ sizes []int }

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return len(p), nil
}

func TestCopyChunks_WritesAtMostChunkSize(t *testing.T) {
	rec := &chunkRecorder{}
	_, err := copyChunks(rec, bytes.NewReader(payload(3*downloadChunkSize)))
	require.NoError(t, err)

	require.NotEmpty(t, rec.sizes)
	for _, s := range rec.sizes {
		assert.LessOrEqual(t, s, downloadChunkSize)
	}
}

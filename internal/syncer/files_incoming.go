// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-notes-sync/internal/adapter"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/messaging"
	"github.com/MKhiriev/go-notes-sync/internal/store"
	"github.com/MKhiriev/go-notes-sync/internal/utils"
	"github.com/MKhiriev/go-notes-sync/models"
)

// FilesIncomingName identifies the attachment download syncer.
const FilesIncomingName = "files:incoming"

const (
	filesIncomingDelay = 1000 * time.Millisecond

	// downloadChunkSize is the streaming buffer of a download.
	downloadChunkSize = 4096

	// maxErrorBody caps how much of a rejection body is kept.
	maxErrorBody = 64 << 10
)

// filesIncoming downloads queued note attachments. Records are processed
// order-independently: a frozen download does not block the others.
type filesIncoming struct {
	base
	api      adapter.ServerAdapter
	files    store.AttachmentStorage
	notifier messaging.Notifier
}

// NewFilesIncoming returns the attachment download syncer.
func NewFilesIncoming(cfg *SyncConfig, api adapter.ServerAdapter, storages *store.ClientStorages, notifier messaging.Notifier) Syncer {
	return &filesIncoming{
		base:     base{cfg: cfg, queue: storages.Queue},
		api:      api,
		files:    storages.Attachments,
		notifier: notifier,
	}
}

func (s *filesIncoming) Name() string { return FilesIncomingName }

func (s *filesIncoming) PollDelay() time.Duration { return filesIncomingDelay }

func (s *filesIncoming) RunBatch(ctx context.Context) error {
	records, err := s.pending(ctx, models.SyncTypeFileIncoming)
	if err != nil {
		return err
	}

	for _, rec := range OrderIndependent(records) {
		if err = s.download(ctx, rec); err != nil {
			return err
		}
		if !s.IsEnabled() {
			return nil
		}
	}
	return nil
}

// download transfers one attachment. The record is deleted and the UI
// notified only after the whole body was written.
func (s *filesIncoming) download(ctx context.Context, rec models.SyncRecord) error {
	log := logger.FromContext(ctx)

	userID, ok := s.cfg.UserID()
	if !ok {
		return &MissingFieldError{Field: "SyncConfig.user_id"}
	}

	log.Info().
		Str("func", "filesIncoming.download").
		Str("item_id", rec.ItemID).
		Msg("downloading attachment")

	written, err := s.fetch(ctx, userID, rec.ItemID)
	if err != nil {
		log.Err(err).
			Str("func", "filesIncoming.download").
			Str("item_id", rec.ItemID).
			Int64("written", written).
			Msg("attachment download failed")
		s.fail(ctx, rec, err)
		return err
	}

	if err = s.complete(ctx, rec); err != nil {
		return err
	}

	if err = s.notifier.Notify(models.EventFileDownloaded, models.FileDownloadedEvent{ItemID: rec.ItemID}); err != nil {
		log.Warn().Err(err).
			Str("func", "filesIncoming.download").
			Str("item_id", rec.ItemID).
			Msg("failed to notify ui")
	}

	log.Info().
		Str("func", "filesIncoming.download").
		Str("item_id", rec.ItemID).
		Int64("bytes", written).
		Msg("attachment downloaded")
	return nil
}

// fetch opens the destination first so that an unusable path fails before
// any network call, then resolves the attachment URL and streams it.
func (s *filesIncoming) fetch(ctx context.Context, userID, itemID string) (written int64, err error) {
	f, err := s.files.Create(userID, itemID)
	if err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			return 0, &InvalidPathError{UserID: userID, ItemID: itemID, Err: err}
		}
		return 0, fmt.Errorf("open attachment destination: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close attachment destination: %w", cerr)
		}
	}()

	var location string
	if err = s.api.Get(ctx, fmt.Sprintf("/notes/%s/attachment", itemID), &location); err != nil {
		return 0, fmt.Errorf("get attachment url: %w", err)
	}

	target, home, err := s.resolve(location)
	if err != nil {
		return 0, err
	}

	client, err := utils.NewHTTPClient(s.cfg.DownloadTimeout(), s.cfg.Proxy())
	if err != nil {
		return 0, fmt.Errorf("create download client: %w", err)
	}

	req := client.R().SetContext(ctx).SetDoNotParseResponse(true)
	if home {
		req = s.api.SetAuthHeaders(req)
	}

	resp, err := req.Get(target)
	if err != nil {
		return 0, fmt.Errorf("download attachment: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return 0, newRemoteError(resp.StatusCode(), body)
	}

	return copyChunks(f, body)
}

// resolve makes location absolute against the API base URL and reports
// whether it points at the home service.
func (s *filesIncoming) resolve(location string) (string, bool, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", false, fmt.Errorf("parse attachment url: %w", err)
	}

	if !u.IsAbs() {
		baseURL, err := url.Parse(s.api.BaseURL() + "/")
		if err != nil {
			return "", false, fmt.Errorf("parse api base url: %w", err)
		}
		u = baseURL.ResolveReference(u)
	}

	return u.String(), IsHomeHost(u, s.cfg.Endpoint()), nil
}

// IsHomeHost reports whether u targets the same host (and port) as endpoint.
// An endpoint without a scheme is read as http.
func IsHomeHost(u *url.URL, endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	if u == nil || u.Host == "" || endpoint == "" {
		return false
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	home, err := url.Parse(endpoint)
	if err != nil || home.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, home.Host)
}

// copyChunks streams src into dst in downloadChunkSize pieces. A chunk that is
// not fully written aborts the copy with [ShortWriteError].
func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, downloadChunkSize)
	var total int64

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if w != n {
				return total, &ShortWriteError{Read: n, Written: w, Err: werr}
			}
			if werr != nil {
				return total, fmt.Errorf("write attachment: %w", werr)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("read attachment body: %w", rerr)
		}
	}
}

func newRemoteError(status int, body io.Reader) *RemoteError {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return &RemoteError{Status: status, Body: ""}
	}

	var parsed any
	if json.Unmarshal(raw, &parsed) == nil {
		return &RemoteError{Status: status, Body: parsed}
	}
	return &RemoteError{Status: status, Body: string(raw)}
}

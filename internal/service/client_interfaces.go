// Package service holds the client-side services that sit between the UI and
// the sync core: record decryption with hierarchical key resolution, and the
// sync queue front door.
package service

import (
	"context"

	"github.com/MKhiriev/go-notes-sync/models"
)

// ClientKeyService resolves record keys from already-decrypted ancestors and
// keeps the profile cache in sync with what was opened.
type ClientKeyService interface {
	// Unlock derives the user key from the master password and salt and
	// stores it in the profile. Spaces owned by the user become openable.
	Unlock(masterPassword string, salt []byte)

	// Open searches the profile snapshot for the keys rec needs, unwraps the
	// record key from a matching grant and decrypts rec. Opened spaces and
	// boards are added to the profile so descendants can resolve.
	// Returns ErrKeysUnresolved when no grant could be used; the caller may
	// retry once an ancestor is opened.
	Open(ctx context.Context, rec models.ProtectedRecord) error

	// OpenAll opens records ancestors first (spaces, then boards, then
	// notes) and returns the ones that stayed locked.
	OpenAll(ctx context.Context, spaces []*models.Space, boards []*models.Board, notes []*models.Note) []models.ProtectedRecord

	// Protect encrypts the private payload of rec with its key (a fresh one
	// when rec has none yet) and grants that key to the given owner, whose
	// key must already be in the profile.
	Protect(rec models.ProtectedRecord, ownerType, ownerID string) error

	// GrantKey wraps the key of the opened record rec with ownerKey and
	// embeds the result as a grant for (ownerType, ownerID).
	GrantKey(rec models.ProtectedRecord, ownerType, ownerID string, ownerKey []byte) error
}

// ClientQueueService enqueues work for the syncers.
type ClientQueueService interface {
	// QueueDownload schedules the attachment of noteID for download. It is
	// idempotent: an already pending download is returned as is.
	QueueDownload(ctx context.Context, noteID string) (models.SyncRecord, error)

	// QueueChange schedules a local change of rec for upload. The record's
	// public view (ciphertext included) is stored as the change data.
	QueueChange(ctx context.Context, action, itemType string, rec models.ProtectedRecord) (models.SyncRecord, error)

	// Unfreeze makes a frozen record eligible for syncing again.
	Unfreeze(ctx context.Context, id string) error

	// Pending lists every queued record in FIFO order.
	Pending(ctx context.Context) ([]models.SyncRecord, error)
}

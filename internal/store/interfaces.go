package store

import (
	"context"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-notes-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// SyncRecordRepository is the durable sync queue.
type SyncRecordRepository interface {
	// Find lists the records of the given types in insertion order,
	// frozen ones included. Filtering by frozen state is a syncer decision.
	Find(ctx context.Context, types ...models.SyncType) ([]models.SyncRecord, error)

	// FindByItem lists the records of one type that target itemID.
	FindByItem(ctx context.Context, typ models.SyncType, itemID string) ([]models.SyncRecord, error)

	// Enqueue appends rec to the queue. ID and CreatedAt are assigned when
	// empty; the stored record is returned.
	Enqueue(ctx context.Context, rec models.SyncRecord) (models.SyncRecord, error)

	// Delete removes the record with the given id. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, id string) error

	// HandleFailed records one failed attempt for rec and freezes it when
	// the failure policy says so. Returns the updated record.
	HandleFailed(ctx context.Context, rec models.SyncRecord) (models.SyncRecord, error)

	// Unfreeze clears the frozen flag and the failure count of a record.
	Unfreeze(ctx context.Context, id string) error
}

// AttachmentStorage maps (user, item) pairs to local attachment files.
type AttachmentStorage interface {
	// Path returns the destination path of an attachment. It fails with
	// [ErrInvalidID] for ids that would escape the user directory.
	Path(userID, itemID string) (string, error)

	// Create creates parent directories and opens the destination for
	// writing, truncating any previous partial download.
	Create(userID, itemID string) (afero.File, error)

	// Open opens a downloaded attachment for reading.
	Open(userID, itemID string) (afero.File, error)

	// Exists reports whether the attachment is present locally.
	Exists(userID, itemID string) (bool, error)
}

// FailurePolicy decides when a repeatedly failing record gets frozen.
type FailurePolicy interface {
	ShouldFreeze(failures int) bool
}

// IDGenerator produces queue record ids.
type IDGenerator interface {
	Generate() string
}

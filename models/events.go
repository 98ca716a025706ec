package models

// UI event names emitted by the sync core.
const (
	EventFileDownloaded = "sync:file:downloaded"
	EventOutgoingSynced = "sync:outgoing:complete"
)

// FileDownloadedEvent is the payload of [EventFileDownloaded].
type FileDownloadedEvent struct {
	ItemID string `json:"item_id"`
}

// OutgoingSyncedEvent is the payload of [EventOutgoingSynced].
type OutgoingSyncedEvent struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Action   string `json:"action"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncType identifies which syncer a queue record belongs to.
type SyncType string

const (
	// SyncTypeOutgoing marks a local change waiting to be pushed to the
	// server. Outgoing records are processed strictly in order.
	SyncTypeOutgoing SyncType = "outgoing"

	// SyncTypeFileIncoming marks a note attachment waiting to be downloaded.
	SyncTypeFileIncoming SyncType = "file:incoming"
)

// Sync actions carried by outgoing records.
const (
	SyncActionAdd    = "add"
	SyncActionEdit   = "edit"
	SyncActionDelete = "delete"
)

// Item types carried by outgoing records.
const (
	ItemTypeSpace = "space"
	ItemTypeBoard = "board"
	ItemTypeNote  = "note"
)

// SyncRecord is one durable entry of the sync queue.
type SyncRecord struct {
	// ID is the unique queue record id (UUIDv7).
	ID string `json:"id"`

	// ItemID is the id of the record the action targets.
	ItemID string `json:"item_id"`

	// Type selects the syncer that handles the record.
	Type SyncType `json:"type"`

	// Action and ItemType describe outgoing changes; empty for downloads.
	Action   string `json:"action,omitempty"`
	ItemType string `json:"item_type,omitempty"`

	// Data is the public view of the changed record for outgoing changes.
	Data json.RawMessage `json:"data,omitempty"`

	// Frozen is set by the failure handler once the record keeps failing.
	// Syncers never set it.
	Frozen bool `json:"frozen"`

	// Errors counts failed attempts. It belongs to the failure policy.
	Errors int `json:"errors"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// OutgoingChange is the body POSTed to the server for an outgoing record.
type OutgoingChange struct {
	ID     string          `json:"sync_id"`
	Action string          `json:"action"`
	Type   string          `json:"type"`
	ItemID string          `json:"item_id"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ToOutgoingChange converts an outgoing queue record into its wire form.
func (r SyncRecord) ToOutgoingChange() OutgoingChange {
	return OutgoingChange{
		ID:     r.ID,
		Action: r.Action,
		Type:   r.ItemType,
		ItemID: r.ItemID,
		Data:   r.Data,
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "slices"

// KeyGrant declares that the key of the record embedding it is also
// reachable through the key of another owner. EncryptedKey holds the
// record's own key wrapped with that owner's key.
type KeyGrant struct {
	Type         string `json:"type"`
	OwnerID      string `json:"id"`
	EncryptedKey []byte `json:"key,omitempty"`
}

// KeyHolder is a cached record as seen by key search: its id and its
// resolved key. A nil Key means the record is known but still locked.
type KeyHolder struct {
	ID  string
	Key []byte
}

// ProfileView is a read-only view over already-decrypted ancestor records.
type ProfileView interface {
	// KeyHolders returns the cached records of the collection named by typ.
	KeyHolders(typ string) []KeyHolder
}

// KeySearchable is implemented by every record type that needs keys of
// other records to be decrypted.
type KeySearchable interface {
	// KeySearch returns the keychain entries the record needs that are
	// already resolved in view. It never fails: an owner that is missing
	// or still locked is simply left out.
	KeySearch(view ProfileView) Keychain
}

// KeyCandidates maps a type tag to the owner ids a record wants keys for.
type KeyCandidates map[string][]string

// Add registers ownerID under typ. Empty ids and duplicates are ignored.
func (c KeyCandidates) Add(typ, ownerID string) {
	if ownerID == "" || slices.Contains(c[typ], ownerID) {
		return
	}
	c[typ] = append(c[typ], ownerID)
}

// AddGrants registers the owner of every grant under the grant's type tag.
func (c KeyCandidates) AddGrants(grants []KeyGrant) {
	for _, g := range grants {
		if g.Type == "" {
			continue
		}
		c.Add(g.Type, g.OwnerID)
	}
}

// SearchKeys joins candidates against view. For each tag it scans the
// matching collection and adds an entry for every holder whose id is a
// candidate and whose key is resolved. Each tag is handled independently.
func SearchKeys(view ProfileView, candidates KeyCandidates) Keychain {
	keychain := NewKeychain()
	if view == nil {
		return keychain
	}

	tags := make([]string, 0, len(candidates))
	for typ := range candidates {
		tags = append(tags, typ)
	}
	slices.Sort(tags)

	for _, typ := range tags {
		ids := candidates[typ]
		if len(ids) == 0 {
			continue
		}
		for _, holder := range view.KeyHolders(typ) {
			if holder.ID == "" || len(holder.Key) == 0 {
				continue
			}
			if !slices.Contains(ids, holder.ID) {
				continue
			}
			keychain.Add(holder.ID, holder.Key, typ)
		}
	}

	return keychain
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "slices"

// Key type tags. A tag names the collection of the profile an owner id is
// looked up in during key search.
const (
	KeyTypeUser  = "user"
	KeyTypeSpace = "space"
	KeyTypeBoard = "board"
)

// KeyEntry is a single resolved decryption key addressed by the id of the
// record that owns it and by its type tag.
type KeyEntry struct {
	OwnerID string
	Key     []byte
	Type    string
}

// Keychain is an ordered, append-oriented collection of resolved keys.
// The zero value is an empty keychain ready to use.
//
// Entries are never removed. Adding a key for an owner+type pair that is
// already present replaces the stored key in place.
type Keychain struct {
	entries []KeyEntry
}

// NewKeychain returns an empty keychain.
func NewKeychain() Keychain {
	return Keychain{}
}

// Add stores key for ownerID under the type tag typ.
func (k *Keychain) Add(ownerID string, key []byte, typ string) {
	for i := range k.entries {
		if k.entries[i].OwnerID == ownerID && k.entries[i].Type == typ {
			k.entries[i].Key = slices.Clone(key)
			return
		}
	}
	k.entries = append(k.entries, KeyEntry{OwnerID: ownerID, Key: slices.Clone(key), Type: typ})
}

// Find returns the entry for ownerID with the given type tag.
func (k Keychain) Find(typ, ownerID string) (KeyEntry, bool) {
	for _, e := range k.entries {
		if e.OwnerID == ownerID && e.Type == typ {
			return e, true
		}
	}
	return KeyEntry{}, false
}

// FindByOwner returns the first entry for ownerID regardless of its type.
func (k Keychain) FindByOwner(ownerID string) (KeyEntry, bool) {
	for _, e := range k.entries {
		if e.OwnerID == ownerID {
			return e, true
		}
	}
	return KeyEntry{}, false
}

// Entries returns a copy of the entries in insertion order.
func (k Keychain) Entries() []KeyEntry {
	return slices.Clone(k.entries)
}

// Len returns the number of entries.
func (k Keychain) Len() int {
	return len(k.entries)
}

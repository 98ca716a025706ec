// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package profile holds the in-memory cache of the signed-in user: the user
// key and every space and board loaded so far. Key resolution reads the cache
// through an immutable Snapshot, so lookups never race with the sync workers
// that keep filling it.
package profile

import (
	"slices"
	"sync"

	"github.com/MKhiriev/go-notes-sync/models"
)

// Profile is the mutable cache. The zero value is not usable; call New.
type Profile struct {
	mu sync.RWMutex

	userID  string
	userKey []byte

	spaces map[string]models.KeyHolder
	boards map[string]models.KeyHolder
}

// New returns an empty profile for userID.
func New(userID string) *Profile {
	return &Profile{
		userID: userID,
		spaces: make(map[string]models.KeyHolder),
		boards: make(map[string]models.KeyHolder),
	}
}

// UserID returns the id of the profile owner.
func (p *Profile) UserID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userID
}

// SetUserKey stores the key derived from the master password.
func (p *Profile) SetUserKey(key []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userKey = slices.Clone(key)
}

// AddSpace caches a space. A nil key records the space as known but locked.
func (p *Profile) AddSpace(id string, key []byte) {
	p.add(p.spaces, id, key)
}

// AddBoard caches a board. A nil key records the board as known but locked.
func (p *Profile) AddBoard(id string, key []byte) {
	p.add(p.boards, id, key)
}

// Remove drops a cached space or board.
func (p *Profile) Remove(typ, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch typ {
	case models.KeyTypeSpace:
		delete(p.spaces, id)
	case models.KeyTypeBoard:
		delete(p.boards, id)
	}
}

// Clear wipes every key. Used on logout.
func (p *Profile) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userKey = nil
	p.spaces = make(map[string]models.KeyHolder)
	p.boards = make(map[string]models.KeyHolder)
}

// Snapshot copies the current cache into an immutable view.
func (p *Profile) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		spaces: sortedHolders(p.spaces),
		boards: sortedHolders(p.boards),
	}
	if p.userID != "" {
		s.users = []models.KeyHolder{{ID: p.userID, Key: slices.Clone(p.userKey)}}
	}
	return s
}

func (p *Profile) add(m map[string]models.KeyHolder, id string, key []byte) {
	if id == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	m[id] = models.KeyHolder{ID: id, Key: slices.Clone(key)}
}

func sortedHolders(m map[string]models.KeyHolder) []models.KeyHolder {
	out := make([]models.KeyHolder, 0, len(m))
	for _, h := range m {
		out = append(out, models.KeyHolder{ID: h.ID, Key: slices.Clone(h.Key)})
	}
	slices.SortFunc(out, func(a, b models.KeyHolder) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Snapshot is a point-in-time copy of a Profile. It implements
// models.ProfileView.
type Snapshot struct {
	users  []models.KeyHolder
	spaces []models.KeyHolder
	boards []models.KeyHolder
}

// KeyHolders returns the cached holders of the given key type.
func (s Snapshot) KeyHolders(typ string) []models.KeyHolder {
	switch typ {
	case models.KeyTypeUser:
		return s.users
	case models.KeyTypeSpace:
		return s.spaces
	case models.KeyTypeBoard:
		return s.boards
	}
	return nil
}

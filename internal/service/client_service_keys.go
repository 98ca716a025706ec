// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-notes-sync/internal/crypto"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/profile"
	"github.com/MKhiriev/go-notes-sync/models"
)

type clientKeyService struct {
	profile *profile.Profile
	cipher  crypto.Cipher
}

// NewClientKeyService returns a [ClientKeyService] over the given profile
// cache and cipher.
func NewClientKeyService(p *profile.Profile, c crypto.Cipher) ClientKeyService {
	return &clientKeyService{profile: p, cipher: c}
}

func (s *clientKeyService) Unlock(masterPassword string, salt []byte) {
	s.profile.SetUserKey(s.cipher.DeriveKey(masterPassword, salt))
}

func (s *clientKeyService) Open(ctx context.Context, rec models.ProtectedRecord) error {
	log := logger.FromContext(ctx)

	if rec.Decrypted() {
		s.register(rec, rec.Key())
		return nil
	}

	// the snapshot is a copy; the profile lock is not held from here on
	keychain := rec.KeySearch(s.profile.Snapshot())

	var lastErr error
	for _, grant := range rec.KeyGrants() {
		entry, ok := keychain.Find(grant.Type, grant.OwnerID)
		if !ok || len(grant.EncryptedKey) == 0 {
			continue
		}

		key, err := s.cipher.UnwrapKey(grant.EncryptedKey, entry.Key)
		if err != nil {
			lastErr = err
			log.Debug().Err(err).
				Str("func", "clientKeyService.Open").
				Str("record_id", rec.RecordID()).
				Str("grant_type", grant.Type).
				Str("grant_id", grant.OwnerID).
				Msg("failed to unwrap record key")
			continue
		}

		if err = rec.Decrypt(key, s.cipher); err != nil {
			lastErr = err
			log.Debug().Err(err).
				Str("func", "clientKeyService.Open").
				Str("record_id", rec.RecordID()).
				Msg("failed to decrypt record")
			continue
		}

		s.register(rec, key)
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrKeysUnresolved, rec.RecordID(), lastErr)
	}
	return fmt.Errorf("%w: %s", ErrKeysUnresolved, rec.RecordID())
}

func (s *clientKeyService) OpenAll(ctx context.Context, spaces []*models.Space, boards []*models.Board, notes []*models.Note) []models.ProtectedRecord {
	var locked []models.ProtectedRecord
	locked = append(locked, s.openTier(ctx, toProtected(spaces))...)
	locked = append(locked, s.openTier(ctx, toProtected(boards))...)
	locked = append(locked, s.openTier(ctx, toProtected(notes))...)
	return locked
}

// openTier retries the locked records of one tier while progress is made, so
// a record granted through a sibling opened later in the same tier resolves.
func (s *clientKeyService) openTier(ctx context.Context, pending []models.ProtectedRecord) []models.ProtectedRecord {
	for len(pending) > 0 {
		var locked []models.ProtectedRecord
		for _, rec := range pending {
			if err := s.Open(ctx, rec); err != nil {
				locked = append(locked, rec)
			}
		}
		if len(locked) == len(pending) {
			return locked
		}
		pending = locked
	}
	return nil
}

func (s *clientKeyService) Protect(rec models.ProtectedRecord, ownerType, ownerID string) error {
	ownerKey, ok := s.ownerKey(ownerType, ownerID)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownOwner, ownerType, ownerID)
	}

	key := rec.Key()
	if key == nil {
		var err error
		if key, err = s.cipher.GenerateKey(); err != nil {
			return fmt.Errorf("generate record key: %w", err)
		}
	}

	if err := rec.Seal(key, s.cipher); err != nil {
		return fmt.Errorf("seal record %s: %w", rec.RecordID(), err)
	}
	if err := s.GrantKey(rec, ownerType, ownerID, ownerKey); err != nil {
		return err
	}

	s.register(rec, key)
	return nil
}

func (s *clientKeyService) GrantKey(rec models.ProtectedRecord, ownerType, ownerID string, ownerKey []byte) error {
	if ownerType == "" || ownerID == "" {
		return fmt.Errorf("%w: empty grant owner", ErrInvalidDataProvided)
	}

	key := rec.Key()
	if key == nil {
		return fmt.Errorf("%w: %s", ErrRecordLocked, rec.RecordID())
	}

	wrapped, err := s.cipher.WrapKey(key, ownerKey)
	if err != nil {
		return fmt.Errorf("wrap record key: %w", err)
	}

	rec.AddGrant(models.KeyGrant{Type: ownerType, OwnerID: ownerID, EncryptedKey: wrapped})
	return nil
}

func (s *clientKeyService) ownerKey(typ, id string) ([]byte, bool) {
	for _, h := range s.profile.Snapshot().KeyHolders(typ) {
		if h.ID == id && h.Key != nil {
			return h.Key, true
		}
	}
	return nil, false
}

// register makes an opened container usable as a key source.
func (s *clientKeyService) register(rec models.ProtectedRecord, key []byte) {
	switch r := rec.(type) {
	case *models.Space:
		s.profile.AddSpace(r.ID, key)
	case *models.Board:
		s.profile.AddBoard(r.ID, key)
	}
}

func toProtected[T models.ProtectedRecord](records []T) []models.ProtectedRecord {
	out := make([]models.ProtectedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	return out
}

// IsUnresolved reports whether err only means the keys are not available yet.
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrKeysUnresolved)
}

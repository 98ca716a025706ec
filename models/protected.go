// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoPrivatePayload is returned by Decrypt when the record carries no
// encrypted body.
var ErrNoPrivatePayload = errors.New("record has no private payload")

// Opener decrypts a base64 ciphertext blob into target.
type Opener interface {
	DecryptData(encryptedB64 string, key []byte, target any) error
}

// Sealer encrypts data into a base64 ciphertext blob.
type Sealer interface {
	EncryptData(data any, key []byte) (string, error)
}

// ProtectedRecord is a record split into plaintext public fields and an
// encrypted private payload.
//
// PublicView always succeeds without a key. The private payload stays nil
// until Decrypt is called with the record's own key and succeeds.
type ProtectedRecord interface {
	KeySearchable

	// RecordID returns the record id.
	RecordID() string

	// KeyGrants returns the grants embedded in the record.
	KeyGrants() []KeyGrant

	// AddGrant embeds g, replacing a grant for the same owner and type.
	AddGrant(g KeyGrant)

	// PublicView serializes the public fields, grants and ciphertext.
	PublicView() ([]byte, error)

	// Decrypt opens the private payload with key.
	Decrypt(key []byte, opener Opener) error

	// Seal encrypts the private payload with key and remembers key.
	Seal(key []byte, sealer Sealer) error

	// Decrypted reports whether the private payload is available.
	Decrypted() bool

	// Key returns the record key once it is known, nil otherwise.
	Key() []byte
}

// Protected holds the parts shared by every protected record: the embedded
// key grants, the ciphertext and, after decryption, the record key.
type Protected struct {
	Keys []KeyGrant `json:"keys,omitempty"`
	Body *string    `json:"body,omitempty"`

	key []byte
}

// KeyGrants implements [ProtectedRecord].
func (p *Protected) KeyGrants() []KeyGrant {
	return slices.Clone(p.Keys)
}

// AddGrant implements [ProtectedRecord].
func (p *Protected) AddGrant(g KeyGrant) {
	for i := range p.Keys {
		if p.Keys[i].Type == g.Type && p.Keys[i].OwnerID == g.OwnerID {
			p.Keys[i] = g
			return
		}
	}
	p.Keys = append(p.Keys, g)
}

// Key implements [ProtectedRecord].
func (p *Protected) Key() []byte {
	return slices.Clone(p.key)
}

// Decrypted implements [ProtectedRecord].
func (p *Protected) Decrypted() bool {
	return p.key != nil
}

// open decrypts Body into target and keeps key only if decryption worked.
func (p *Protected) open(key []byte, opener Opener, target any) error {
	if p.Body == nil || *p.Body == "" {
		return ErrNoPrivatePayload
	}
	if err := opener.DecryptData(*p.Body, key, target); err != nil {
		return fmt.Errorf("decrypt private payload: %w", err)
	}
	p.key = slices.Clone(key)
	return nil
}

func (p *Protected) seal(key []byte, sealer Sealer, data any) error {
	body, err := sealer.EncryptData(data, key)
	if err != nil {
		return fmt.Errorf("encrypt private payload: %w", err)
	}
	p.Body = &body
	p.key = slices.Clone(key)
	return nil
}

package models

import "encoding/json"

// BoardData is the private payload of a board.
type BoardData struct {
	Title string `json:"title"`
}

// Board groups notes inside a space.
type Board struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id"`
	SpaceID string          `json:"space_id"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Protected

	data *BoardData
}

// RecordID implements [ProtectedRecord].
func (b *Board) RecordID() string { return b.ID }

// KeySearch implements [KeySearchable]. The parent space and every granted
// space or board are candidates.
func (b *Board) KeySearch(view ProfileView) Keychain {
	candidates := KeyCandidates{}
	candidates.Add(KeyTypeSpace, b.SpaceID)
	candidates.AddGrants(b.Keys)
	return SearchKeys(view, candidates)
}

// PublicView implements [ProtectedRecord].
func (b *Board) PublicView() ([]byte, error) {
	return json.Marshal(b)
}

// Decrypt implements [ProtectedRecord].
func (b *Board) Decrypt(key []byte, opener Opener) error {
	var data BoardData
	if err := b.open(key, opener, &data); err != nil {
		return err
	}
	b.data = &data
	return nil
}

// Seal implements [ProtectedRecord].
func (b *Board) Seal(key []byte, sealer Sealer) error {
	data := BoardData{}
	if b.data != nil {
		data = *b.data
	}
	return b.seal(key, sealer, data)
}

// Private returns the decrypted payload or nil while the board is locked.
func (b *Board) Private() *BoardData { return b.data }

// SetPrivate replaces the plaintext payload; call Seal to encrypt it.
func (b *Board) SetPrivate(data BoardData) { b.data = &data }

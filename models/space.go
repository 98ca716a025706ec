package models

import "encoding/json"

// SpaceData is the private payload of a space.
type SpaceData struct {
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
}

// Space is the top-level container. Its key is unlocked by the key of the
// owning user or by grants to it.
type Space struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Protected

	data *SpaceData
}

// RecordID implements [ProtectedRecord].
func (s *Space) RecordID() string { return s.ID }

// KeySearch implements [KeySearchable].
func (s *Space) KeySearch(view ProfileView) Keychain {
	candidates := KeyCandidates{}
	candidates.Add(KeyTypeUser, s.UserID)
	candidates.AddGrants(s.Keys)
	return SearchKeys(view, candidates)
}

// PublicView implements [ProtectedRecord].
func (s *Space) PublicView() ([]byte, error) {
	return json.Marshal(s)
}

// Decrypt implements [ProtectedRecord].
func (s *Space) Decrypt(key []byte, opener Opener) error {
	var data SpaceData
	if err := s.open(key, opener, &data); err != nil {
		return err
	}
	s.data = &data
	return nil
}

// Seal implements [ProtectedRecord].
func (s *Space) Seal(key []byte, sealer Sealer) error {
	data := SpaceData{}
	if s.data != nil {
		data = *s.data
	}
	return s.seal(key, sealer, data)
}

// Private returns the decrypted payload or nil while the space is locked.
func (s *Space) Private() *SpaceData { return s.data }

// SetPrivate replaces the plaintext payload; call Seal to encrypt it.
func (s *Space) SetPrivate(data SpaceData) { s.data = &data }

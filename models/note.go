package models

import "encoding/json"

// FileMeta describes the attachment of a note. The attachment bytes live
// in the files directory, never in the note itself.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size"`
}

// NoteData is the private payload of a note.
type NoteData struct {
	Title string    `json:"title,omitempty"`
	Text  string    `json:"text,omitempty"`
	Tags  []string  `json:"tags,omitempty"`
	File  *FileMeta `json:"file,omitempty"`
}

// Note is a single user entry. It may live on a board, directly in a
// space, or both.
type Note struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	SpaceID string `json:"space_id"`
	BoardID string `json:"board_id,omitempty"`
	HasFile bool   `json:"has_file,omitempty"`
	Protected

	data *NoteData
}

// RecordID implements [ProtectedRecord].
func (n *Note) RecordID() string { return n.ID }

// KeySearch implements [KeySearchable].
func (n *Note) KeySearch(view ProfileView) Keychain {
	candidates := KeyCandidates{}
	candidates.Add(KeyTypeSpace, n.SpaceID)
	candidates.Add(KeyTypeBoard, n.BoardID)
	candidates.AddGrants(n.Keys)
	return SearchKeys(view, candidates)
}

// PublicView implements [ProtectedRecord].
func (n *Note) PublicView() ([]byte, error) {
	return json.Marshal(n)
}

// Decrypt implements [ProtectedRecord].
func (n *Note) Decrypt(key []byte, opener Opener) error {
	var data NoteData
	if err := n.open(key, opener, &data); err != nil {
		return err
	}
	n.data = &data
	return nil
}

// Seal implements [ProtectedRecord].
func (n *Note) Seal(key []byte, sealer Sealer) error {
	data := NoteData{}
	if n.data != nil {
		data = *n.data
	}
	return n.seal(key, sealer, data)
}

// Private returns the decrypted payload or nil while the note is locked.
func (n *Note) Private() *NoteData { return n.data }

// SetPrivate replaces the plaintext payload; call Seal to encrypt it.
func (n *Note) SetPrivate(data NoteData) {
	n.data = &data
	n.HasFile = data.File != nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const attachmentExt = ".enc"

// attachmentStorage keeps encrypted attachments under
// <root>/<user_id>/<item_id>.enc on an afero filesystem.
type attachmentStorage struct {
	fs   afero.Fs
	root string
}

// NewAttachmentStorage returns an [AttachmentStorage] rooted at root.
func NewAttachmentStorage(fs afero.Fs, root string) AttachmentStorage {
	return &attachmentStorage{fs: fs, root: root}
}

func (s *attachmentStorage) Path(userID, itemID string) (string, error) {
	if err := validateID(userID); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	if err := validateID(itemID); err != nil {
		return "", fmt.Errorf("item id: %w", err)
	}
	return filepath.Join(s.root, userID, itemID+attachmentExt), nil
}

func (s *attachmentStorage) Create(userID, itemID string) (afero.File, error) {
	path, err := s.Path(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err = s.fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create attachment file: %w", err)
	}
	return f, nil
}

func (s *attachmentStorage) Open(userID, itemID string) (afero.File, error) {
	path, err := s.Path(userID, itemID)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment file: %w", err)
	}
	return f, nil
}

func (s *attachmentStorage) Exists(userID, itemID string) (bool, error) {
	path, err := s.Path(userID, itemID)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, path)
}

func validateID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`), strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

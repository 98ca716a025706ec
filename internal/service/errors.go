package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrKeysUnresolved means none of the record's grants could be opened
	// with the keys currently in the profile.
	ErrKeysUnresolved = errors.New("record keys unresolved")

	// ErrUnknownOwner means the owner key needed to grant access is not in
	// the profile.
	ErrUnknownOwner = errors.New("owner key unknown")

	// ErrRecordLocked means an operation needed the key of a record that was
	// not opened.
	ErrRecordLocked = errors.New("record is locked")
)

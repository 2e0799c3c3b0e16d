package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when the requested key does not exist.
	// Note: badger.ErrKeyNotFound is the error returned by the badger API;
	// everything in storage/badger and storage/badger/operation converts it
	// to ErrNotFound before returning.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned when inserting under an existing key.
	ErrAlreadyExists = errors.New("key already exists")
)

package storage

import "errors"

// Common client storage errors
var (
	// ErrKeyNotFound indicates that the key does not exist in the store
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoPendingFlow indicates that no pending multi-step flow record exists
	ErrNoPendingFlow = errors.New("no pending flow record")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)

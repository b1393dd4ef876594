package store

import "errors"

var (
	// ErrNotInitialized means the target directory is not a monfari repository.
	ErrNotInitialized = errors.New("repository is not initialized")

	// ErrAlreadyLocked means another process holds the repository lock. A
	// crashed process leaves a stale lock that must be cleared by hand.
	ErrAlreadyLocked = errors.New("repository is locked by another process")

	// ErrDirtyRepository means the working tree has uncommitted changes: a
	// previous run crashed mid-command. Recovery is manual inspection.
	ErrDirtyRepository = errors.New("repository is dirty - a previous run crashed mid-command")

	// ErrTransport marks remote I/O failures and protocol desynchronization.
	// Both are terminal for the connection; there is no retry.
	ErrTransport = errors.New("transport failure")
)

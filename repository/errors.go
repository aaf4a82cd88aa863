package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrDuplicateTrack is returned when adding a track that is already a
	// member of the playlist. Playlists reject duplicate adds; the featured
	// set treats them as idempotent no-ops instead.
	ErrDuplicateTrack = errors.New("track already in playlist")

	// ErrForbidden is returned when the acting user lacks ownership or the
	// required role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrReorderMismatch is returned when a reorder request does not list
	// exactly the current member set. Partial reorders are rejected rather
	// than merged: an omitted member is ambiguous between a deletion and an
	// oversight, so the caller must always submit the complete order.
	ErrReorderMismatch = errors.New("reorder list does not match current members")
)

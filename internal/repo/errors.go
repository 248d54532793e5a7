package repo

import "errors"

var (
	// ErrUnreachable indicates the repository location could not be opened
	// or fetched at all. Load-fatal: nothing is partially indexed.
	ErrUnreachable = errors.New("repository unreachable")

	// ErrNoIndexableFiles indicates the repository was reachable but every
	// file was filtered out (binary, oversized, excluded, or empty).
	ErrNoIndexableFiles = errors.New("repository contains no indexable files")
)

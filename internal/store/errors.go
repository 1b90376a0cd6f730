package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	// ErrStaleUpdate is returned when a lifecycle update targets a finished analysis
	// or carries a sequence not greater than the stored one.
	ErrStaleUpdate   = errors.New("stale update")
	ErrInvalidRecord = errors.New("invalid record")
)

package domain

import (
	"errors"
	"fmt"
)

// State machine precondition violations. Reported to the caller; the
// persisted sync state is left untouched.
var (
	ErrAlreadyRunning = errors.New("a reindex is already running")
	ErrNotRunning     = errors.New("no reindex is running")
)

// IndexErrorKind classifies failures of the index backend.
type IndexErrorKind int

const (
	// IndexUnreachable covers transport failures and exhausted retries.
	IndexUnreachable IndexErrorKind = iota
	// IndexNotFound is a missing index or document.
	IndexNotFound
	// IndexMalformed is a response the translator cannot parse.
	IndexMalformed
)

func (k IndexErrorKind) String() string {
	switch k {
	case IndexNotFound:
		return "not_found"
	case IndexMalformed:
		return "malformed"
	default:
		return "unreachable"
	}
}

// IndexError is a typed failure from the index client layer.
type IndexError struct {
	Kind IndexErrorKind
	Op   string
	Err  error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// IndexErrorKindOf extracts the kind from an error chain, defaulting to
// unreachable for untyped failures.
func IndexErrorKindOf(err error) IndexErrorKind {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return IndexUnreachable
}

// RepositoryError is a typed failure from the content repository layer.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// SyncStoreError is a typed failure from the sync state store.
type SyncStoreError struct {
	Op  string
	Err error
}

func (e *SyncStoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SyncStoreError) Unwrap() error { return e.Err }

// Package store defines the backend the tracker reads programs from and writes
// them to. Implementations live in the sheetapi and sqlite subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"gradtrack/internal/domain"
)

// ErrNotFound is returned by Update and Delete when no row has the identity.
var ErrNotFound = errors.New("store: program not found")

// Store exposes the four operations of the spreadsheet backend. Every write is
// a full replace of the editable fields; there is no patch.
type Store interface {
	Name() string
	List(ctx context.Context) ([]domain.WireRecord, error)
	Create(ctx context.Context, payload domain.WireRecord) error
	Update(ctx context.Context, id domain.Identity, payload domain.WireRecord) error
	Delete(ctx context.Context, id domain.Identity) error
}

// FetchError means List failed. The collection held by the caller is stale
// but intact.
type FetchError struct {
	Store string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: list programs failed: %v", e.Store, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Write operations, as reported in WriteError.Op.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// WriteError means a create, update or delete was rejected.
type WriteError struct {
	Store    string
	Op       string
	Identity domain.Identity
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s %q failed: %v", e.Store, e.Op, e.Identity.String(), e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

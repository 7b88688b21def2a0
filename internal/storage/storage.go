// Package storage holds keyed snapshot blobs, the server-side counterpart of
// the browser's local storage. Values are opaque bytes; callers own encoding.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no blob is stored under a key.
	ErrNotFound = errors.New("blob not found")
	// ErrConflict is returned by Update when concurrent writers kept winning.
	ErrConflict = errors.New("blob changed concurrently")
)

// UpdateFunc computes the next value of a blob from its current one. found
// is false when no blob exists. Returning write=false leaves the blob as is.
// It may run more than once and must not have side effects.
type UpdateFunc func(current []byte, found bool) (next []byte, write bool, err error)

// BlobStore reads and writes whole blobs by key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update applies fn atomically: no other write to key lands between the
	// read fn sees and the write it returns.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Key builds the namespaced key for an owner's named blob, e.g. "freshcart:<owner>:cart".
func Key(owner, name string) string {
	return "freshcart:" + owner + ":" + name
}

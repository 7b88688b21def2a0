// Package wishlist keeps each user's saved products, an ordered set unique by
// product id.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/storage"
)

// ErrCorrupt is returned with an empty list when a stored wishlist cannot be decoded.
var ErrCorrupt = errors.New("persisted wishlist is corrupt")

const blobName = "wishlist"

// Repository loads and atomically rewrites whole wishlists per owner.
type Repository interface {
	Load(ctx context.Context, owner string) ([]catalog.Product, error)
	// Update hands the stored list, empty when missing or unreadable, to fn
	// and writes the result when changed is true. fn may be retried.
	Update(ctx context.Context, owner string, fn func(current []catalog.Product) (next []catalog.Product, changed bool)) ([]catalog.Product, error)
}

// BlobRepository stores wishlists as JSON arrays keyed "<owner>:wishlist".
type BlobRepository struct {
	blobs storage.BlobStore
}

// NewBlobRepository builds a wishlist repository over a blob store.
func NewBlobRepository(blobs storage.BlobStore) *BlobRepository {
	return &BlobRepository{blobs: blobs}
}

// Load decodes the owner's wishlist.
func (r *BlobRepository) Load(ctx context.Context, owner string) ([]catalog.Product, error) {
	data, err := r.blobs.Get(ctx, storage.Key(owner, blobName))
	if errors.Is(err, storage.ErrNotFound) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return []catalog.Product{}, fmt.Errorf("load wishlist: %w", err)
	}
	return decode(data)
}

// Update applies fn to the stored wishlist in one blob transaction.
func (r *BlobRepository) Update(ctx context.Context, owner string, fn func([]catalog.Product) ([]catalog.Product, bool)) ([]catalog.Product, error) {
	var result []catalog.Product
	err := r.blobs.Update(ctx, storage.Key(owner, blobName), func(cur []byte, found bool) ([]byte, bool, error) {
		current := []catalog.Product{}
		if found {
			if items, err := decode(cur); err == nil {
				current = items
			}
		}
		next, changed := fn(current)
		result = next
		if !changed {
			return nil, false, nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("encode wishlist: %w", err)
		}
		return data, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update wishlist: %w", err)
	}
	return result, nil
}

func decode(data []byte) ([]catalog.Product, error) {
	var items []catalog.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return []catalog.Product{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if items == nil {
		items = []catalog.Product{}
	}
	return items, nil
}

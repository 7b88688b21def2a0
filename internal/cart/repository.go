package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freshcart/storefront/internal/storage"
)

// ErrCorrupt is returned by Load when a persisted cart exists but cannot be
// decoded. The accompanying snapshot is empty.
var ErrCorrupt = errors.New("persisted cart is corrupt")

const blobName = "cart"

// Repository loads and atomically rewrites whole cart snapshots per owner.
type Repository interface {
	// Load returns the owner's cart, the empty cart when none is stored, or
	// the empty cart with ErrCorrupt when the stored value is unreadable.
	Load(ctx context.Context, owner string) (Snapshot, error)
	// Update passes the persisted cart to fn and stores what it returns when
	// changed is true. A missing or unreadable cart reaches fn as the empty
	// snapshot. fn may run more than once and must be free of side effects.
	Update(ctx context.Context, owner string, fn func(current Snapshot) (next Snapshot, changed bool)) (Snapshot, error)
}

// BlobRepository stores carts as JSON blobs keyed "<owner>:cart".
type BlobRepository struct {
	blobs storage.BlobStore
}

// NewBlobRepository builds a cart repository over a blob store.
func NewBlobRepository(blobs storage.BlobStore) *BlobRepository {
	return &BlobRepository{blobs: blobs}
}

// Load decodes the owner's cart.
func (r *BlobRepository) Load(ctx context.Context, owner string) (Snapshot, error) {
	data, err := r.blobs.Get(ctx, storage.Key(owner, blobName))
	if errors.Is(err, storage.ErrNotFound) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("load cart: %w", err)
	}
	return decode(data)
}

// Update runs fn against the stored cart inside a single blob transaction.
func (r *BlobRepository) Update(ctx context.Context, owner string, fn func(Snapshot) (Snapshot, bool)) (Snapshot, error) {
	var result Snapshot
	err := r.blobs.Update(ctx, storage.Key(owner, blobName), func(cur []byte, found bool) ([]byte, bool, error) {
		current := Empty()
		if found {
			// An unreadable cart is overwritten by the next change.
			if snap, err := decode(cur); err == nil {
				current = snap
			}
		}
		next, changed := fn(current)
		result = next
		if !changed {
			return nil, false, nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("encode cart: %w", err)
		}
		return data, true, nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("update cart: %w", err)
	}
	return result, nil
}

func decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.Products == nil {
		snap.Products = []Line{}
	}
	return snap, nil
}

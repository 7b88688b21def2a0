package wishlist

import (
	"context"
	"errors"
	"sync"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/validation"
)

// ErrInvalidProduct rejects a product without an id.
var ErrInvalidProduct = apperror.Validation("Invalid product data")

var validate = validation.New()

// Store works on one owner's persisted wishlist. Changes run as atomic
// repository updates against the stored list; the store keeps the last list
// it read or wrote.
type Store struct {
	mu       sync.Mutex
	owner    string
	repo     Repository
	notifier notification.Notifier
	items    []catalog.Product
}

// NewStore builds a wishlist store for owner.
func NewStore(owner string, repo Repository, notifier notification.Notifier) *Store {
	return &Store{owner: owner, repo: repo, notifier: notifier, items: []catalog.Product{}}
}

// Load reads the persisted wishlist. A corrupt one yields an empty list and ErrCorrupt.
func (s *Store) Load(ctx context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.repo.Load(ctx, s.owner)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return s.copyItems(), err
	}
	s.items = items
	return s.copyItems(), err
}

// Items returns the list as last seen by this store.
func (s *Store) Items() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Add appends p unless a product with the same id is already saved, in which
// case the list is left as is and an info notice is sent.
func (s *Store) Add(ctx context.Context, p catalog.Product) ([]catalog.Product, error) {
	if err := validate.Struct(p, ErrInvalidProduct.Message); err != nil {
		s.notify(ctx, notification.Error(notification.KindWishlistInvalid, ErrInvalidProduct.Message))
		return s.Items(), err
	}

	var exists bool
	items, err := s.update(ctx, func(cur []catalog.Product) ([]catalog.Product, bool) {
		exists = indexOf(cur, p.ID) >= 0
		if exists {
			return cur, false
		}
		next := make([]catalog.Product, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, p), true
	})
	switch {
	case err != nil:
		return items, err
	case exists:
		s.notify(ctx, notification.Info(notification.KindWishlistExists, "Already in wishlist"))
	default:
		s.notify(ctx, notification.Success(notification.KindWishlistAdded, "Added to wishlist!"))
	}
	return items, nil
}

// Delete removes the product with id if present.
func (s *Store) Delete(ctx context.Context, id string) ([]catalog.Product, error) {
	items, err := s.update(ctx, func(cur []catalog.Product) ([]catalog.Product, bool) {
		next := make([]catalog.Product, 0, len(cur))
		for _, p := range cur {
			if p.ID != id {
				next = append(next, p)
			}
		}
		return next, true
	})
	if err != nil {
		return items, err
	}
	s.notify(ctx, notification.Success(notification.KindWishlistRemoved, "Removed from wishlist!"))
	return items, nil
}

// Contains reports whether id was saved when the list was last read or written.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, id) >= 0
}

func (s *Store) update(ctx context.Context, change func([]catalog.Product) ([]catalog.Product, bool)) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.repo.Update(ctx, s.owner, change)
	if err != nil {
		return s.copyItems(), err
	}
	s.items = next
	return s.copyItems(), nil
}

func indexOf(items []catalog.Product, id string) int {
	for i, p := range items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []catalog.Product {
	out := make([]catalog.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) notify(ctx context.Context, n notification.Notice) {
	_ = notification.Deliver(ctx, s.notifier, n)
}

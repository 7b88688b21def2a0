package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/validation"
)

// ErrInvalidProduct rejects products without an id or a usable price.
var ErrInvalidProduct = apperror.Validation("Invalid product data")

var validate = validation.New()

// Store operates on one owner's persisted cart. Each mutation builds a new
// snapshot from the freshly read cart, recomputes the total and writes it in
// one atomic repository update. The store remembers the last snapshot it
// read or wrote; a failed write leaves that snapshot unchanged.
type Store struct {
	mu       sync.Mutex
	owner    string
	repo     Repository
	notifier notification.Notifier
	snapshot Snapshot
}

// NewStore builds a store for owner. Nothing is read until Load or the first
// mutation.
func NewStore(owner string, repo Repository, notifier notification.Notifier) *Store {
	return &Store{owner: owner, repo: repo, notifier: notifier, snapshot: Empty()}
}

// Load reads the persisted cart. A missing cart yields the empty snapshot and
// no error; an unreadable one yields the empty snapshot and ErrCorrupt.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.repo.Load(ctx, s.owner)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return s.snapshot.Clone(), err
	}
	s.snapshot = snap
	return s.snapshot.Clone(), err
}

// Snapshot returns the cart as last read or written by this store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// AddProduct adds one unit of p, appending a new line when the product is not
// yet in the cart.
func (s *Store) AddProduct(ctx context.Context, p ProductInput) (Snapshot, error) {
	if err := validProduct(p); err != nil {
		s.notify(ctx, notification.Error(notification.KindCartInvalid, ErrInvalidProduct.Message))
		return s.Snapshot(), err
	}

	var title string
	snap, err := s.update(ctx, func(cur Snapshot) (Snapshot, bool) {
		lines := cur.Clone().Products
		if idx := cur.Find(p.ID); idx >= 0 {
			lines[idx].Count++
			title = lines[idx].Product.Title
			return withLines(lines), true
		}

		line := Line{
			Product: LineProduct{ID: p.ID, Title: DefaultTitle},
			Price:   *p.Price,
			Count:   1,
		}
		if p.Title != nil {
			line.Product.Title = *p.Title
		}
		if p.ImageCover != nil {
			line.Product.ImageCover = *p.ImageCover
		}
		title = line.Product.Title
		return withLines(append(lines, line)), true
	})
	if err != nil {
		return snap, err
	}
	s.notify(ctx, notification.Success(notification.KindCartAdded, fmt.Sprintf("%s added to cart!", title)))
	return snap, nil
}

// DeleteProduct removes the line for productID. Removing an absent product
// leaves the lines untouched and still succeeds.
func (s *Store) DeleteProduct(ctx context.Context, productID string) (Snapshot, error) {
	snap, err := s.update(ctx, func(cur Snapshot) (Snapshot, bool) {
		return without(cur, productID), true
	})
	if err != nil {
		return snap, err
	}
	s.notify(ctx, notification.Success(notification.KindCartRemoved, "Product removed!"))
	return snap, nil
}

// UpdateProductQuantity sets the count of productID to quantity. A quantity of
// zero or less deletes the line; an unknown product is ignored.
func (s *Store) UpdateProductQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error) {
	if quantity <= 0 {
		return s.DeleteProduct(ctx, productID)
	}

	var found bool
	snap, err := s.update(ctx, func(cur Snapshot) (Snapshot, bool) {
		idx := cur.Find(productID)
		found = idx >= 0
		if !found {
			return cur, false
		}
		lines := cur.Clone().Products
		lines[idx].Count = quantity
		return withLines(lines), true
	})
	if err != nil || !found {
		return snap, err
	}
	s.notify(ctx, notification.Success(notification.KindCartQuantity, "Quantity updated!"))
	return snap, nil
}

// EmptyCart resets the cart to the empty snapshot.
func (s *Store) EmptyCart(ctx context.Context) (Snapshot, error) {
	snap, err := s.update(ctx, func(Snapshot) (Snapshot, bool) {
		return Empty(), true
	})
	if err != nil {
		return snap, err
	}
	s.notify(ctx, notification.Success(notification.KindCartCleared, "Cart cleared!"))
	return snap, nil
}

func (s *Store) update(ctx context.Context, change func(Snapshot) (Snapshot, bool)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.repo.Update(ctx, s.owner, change)
	if err != nil {
		return s.snapshot.Clone(), err
	}
	s.snapshot = next
	return next.Clone(), nil
}

func without(cur Snapshot, productID string) Snapshot {
	lines := make([]Line, 0, len(cur.Products))
	for _, l := range cur.Products {
		if l.Product.ID != productID {
			lines = append(lines, l)
		}
	}
	return withLines(lines)
}

func (s *Store) notify(ctx context.Context, n notification.Notice) {
	_ = notification.Deliver(ctx, s.notifier, n)
}

func validProduct(p ProductInput) error {
	if err := validate.Struct(p, ErrInvalidProduct.Message); err != nil {
		return err
	}
	if math.IsInf(*p.Price, 0) || math.IsNaN(*p.Price) {
		return ErrInvalidProduct
	}
	return nil
}

package wishlist

import (
	"github.com/freshcart/storefront/internal/notification"
)

// Registry builds per-owner wishlist stores over one repository.
type Registry struct {
	repo     Repository
	notifier notification.Notifier
}

// NewRegistry builds a registry whose stores share repo and notifier.
func NewRegistry(repo Repository, notifier notification.Notifier) *Registry {
	return &Registry{repo: repo, notifier: notifier}
}

// For returns a store for owner. Stores read the persisted list on every
// change, so nothing is cached here.
func (r *Registry) For(owner string) *Store {
	return NewStore(owner, r.repo, r.notifier)
}

package cart

import (
	"github.com/freshcart/storefront/internal/notification"
)

// Registry builds per-owner stores over a shared repository and notifier.
// Stores keep no state between calls that other replicas could miss: every
// mutation reads and writes the persisted cart in one atomic update.
type Registry struct {
	repo     Repository
	notifier notification.Notifier
}

// NewRegistry builds a registry whose stores share repo and notifier.
func NewRegistry(repo Repository, notifier notification.Notifier) *Registry {
	return &Registry{repo: repo, notifier: notifier}
}

// For returns a store for owner.
func (r *Registry) For(owner string) *Store {
	return NewStore(owner, r.repo, r.notifier)
}

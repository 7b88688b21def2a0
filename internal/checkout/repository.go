package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freshcart/storefront/internal/storage"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("checkout session not found")

// Repository stores sessions per owner.
type Repository interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, owner, id string) (Session, error)
}

// BlobRepository keeps sessions as JSON blobs keyed under their owner, so a
// session id is only visible to the user who started it.
type BlobRepository struct {
	blobs storage.BlobStore
}

func NewBlobRepository(blobs storage.BlobStore) *BlobRepository {
	return &BlobRepository{blobs: blobs}
}

func sessionKey(owner, id string) string {
	return storage.Key(owner, "checkout:"+id)
}

func (r *BlobRepository) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := r.blobs.Set(ctx, sessionKey(s.OwnerID, s.ID), data); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

func (r *BlobRepository) Get(ctx context.Context, owner, id string) (Session, error) {
	data, err := r.blobs.Get(ctx, sessionKey(owner, id))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load checkout session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode checkout session: %w", err)
	}
	return s, nil
}

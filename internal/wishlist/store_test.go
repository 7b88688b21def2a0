package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/storage"
)

type brokenRepo struct{}

func (brokenRepo) Load(context.Context, string) ([]catalog.Product, error) {
	return []catalog.Product{}, nil
}

func (brokenRepo) Update(context.Context, string, func([]catalog.Product) ([]catalog.Product, bool)) ([]catalog.Product, error) {
	return nil, errors.New("redis down")
}

func milk() catalog.Product {
	return catalog.Product{ID: "p1", Title: "Milk", Price: 2.5}
}

func TestAddIsUniqueByID(t *testing.T) {
	notes := notification.NewCollector()
	store := NewStore("user-1", NewBlobRepository(storage.NewMemory()), notes)
	ctx := context.Background()

	items, err := store.Add(ctx, milk())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	dup := milk()
	dup.Title = "Other title"
	items, err = store.Add(ctx, dup)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Title)

	got := notes.Notices()
	require.Len(t, got, 2)
	assert.Equal(t, notification.Success(notification.KindWishlistAdded, "Added to wishlist!"), got[0])
	assert.Equal(t, notification.Info(notification.KindWishlistExists, "Already in wishlist"), got[1])
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	store := NewStore("user-1", NewBlobRepository(storage.NewMemory()), nil)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := store.Add(ctx, catalog.Product{ID: id, Price: 1})
		require.NoError(t, err)
	}
	ids := []string{}
	for _, p := range store.Items() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.True(t, store.Contains("a"))
}

func TestDeleteAndReload(t *testing.T) {
	repo := NewBlobRepository(storage.NewMemory())
	ctx := context.Background()
	store := NewStore("user-1", repo, nil)
	_, err := store.Add(ctx, milk())
	require.NoError(t, err)
	_, err = store.Add(ctx, catalog.Product{ID: "p2", Title: "Bread", Price: 1})
	require.NoError(t, err)

	items, err := store.Delete(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = store.Delete(ctx, "absent")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	reloaded, err := NewStore("user-1", repo, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, reloaded)
}

func TestAddRejectsMissingID(t *testing.T) {
	notes := notification.NewCollector()
	store := NewStore("user-1", NewBlobRepository(storage.NewMemory()), notes)

	_, err := store.Add(context.Background(), catalog.Product{Title: "no id"})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.Empty(t, store.Items())
	assert.Equal(t, notification.LevelError, notes.Notices()[0].Level)
}

func TestCorruptWishlistLoadsEmpty(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	require.NoError(t, blobs.Set(ctx, storage.Key("user-1", "wishlist"), []byte(`{"oops":`)))

	items, err := NewStore("user-1", NewBlobRepository(blobs), nil).Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestFailedSaveKeepsList(t *testing.T) {
	store := NewStore("user-1", brokenRepo{}, nil)
	_, err := store.Add(context.Background(), milk())
	assert.Error(t, err)
	assert.Empty(t, store.Items())
}

func TestRegistriesSharingStorageKeepBothAdds(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	replicaA := NewRegistry(NewBlobRepository(blobs), nil)
	replicaB := NewRegistry(NewBlobRepository(blobs), nil)

	_, err := replicaA.For("user-1").Add(ctx, milk())
	require.NoError(t, err)
	_, err = replicaB.For("user-1").Add(ctx, catalog.Product{ID: "p2", Price: 1})
	require.NoError(t, err)
	items, err := replicaA.For("user-1").Add(ctx, catalog.Product{ID: "p3", Price: 1})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	notes := notification.NewCollector()
	items, err = NewRegistry(NewBlobRepository(blobs), notes).For("user-1").Add(ctx, milk())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, notification.KindWishlistExists, notes.Notices()[0].Kind)
}

func TestAddAfterExternalDeleteStartsFromEmpty(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	lists := NewRegistry(NewBlobRepository(blobs), nil)

	_, err := lists.For("user-1").Add(ctx, milk())
	require.NoError(t, err)
	require.NoError(t, blobs.Delete(ctx, storage.Key("user-1", "wishlist")))

	items, err := lists.For("user-1").Add(ctx, catalog.Product{ID: "p2", Price: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)
}

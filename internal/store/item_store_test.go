package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/artcatalog/internal/domain"
)

func newItem(t *testing.T, collectionID int64, objectType domain.ObjectType, date time.Time, details domain.Details) *domain.CatalogItem {
	t.Helper()
	item, err := domain.NewCatalogItem(collectionID, objectType, domain.Common{
		Storage:         domain.StorageClimate,
		StorageLocation: "Vault A",
		Date:            date,
	}, details)
	require.NoError(t, err)
	return item
}

func TestItemStoreCreate_Artwork(t *testing.T) {
	d := openTestDB(t)
	collections := NewCollectionStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	c, err := collections.Create(ctx, "Alice", "R-100")
	require.NoError(t, err)

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	saved, err := items.Create(ctx, newItem(t, c.ID, domain.ObjectArtwork, date, domain.ArtworkDetails{
		Title: "Starry Night", ArtistName: "Van Gogh", Medium: domain.MediumPainting,
	}))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, c.ID, saved.CollectionID)
	assert.Equal(t, domain.ObjectArtwork, saved.Type)
	assert.Equal(t, domain.StorageClimate, saved.Storage)
	assert.Equal(t, "Vault A", saved.StorageLocation)
	assert.True(t, date.Equal(saved.Date))
	assert.Equal(t, domain.ArtworkDetails{Title: "Starry Night", ArtistName: "Van Gogh", Medium: domain.MediumPainting}, saved.Details)
}

func TestItemStoreCreate_VariantColumnsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	collections := NewCollectionStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	c, err := collections.Create(ctx, "Alice", "R-100")
	require.NoError(t, err)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	furniture, err := items.Create(ctx, newItem(t, c.ID, domain.ObjectFurniture, date, domain.FurnitureDetails{Description: "Oak desk"}))
	require.NoError(t, err)
	assert.Equal(t, domain.FurnitureDetails{Description: "Oak desk"}, furniture.Details)

	crate, err := items.Create(ctx, newItem(t, c.ID, domain.ObjectCrate, date, domain.ContainerDetails{Dimensions: "40x30x20", Contents: "Bronze"}))
	require.NoError(t, err)
	assert.Equal(t, domain.ObjectCrate, crate.Type)
	assert.Equal(t, domain.ContainerDetails{Dimensions: "40x30x20", Contents: "Bronze"}, crate.Details)

	var title any
	require.NoError(t, d.QueryRow("SELECT title FROM catalog_items WHERE id = ?", crate.ID).Scan(&title))
	assert.Nil(t, title, "columns for other variants stay NULL")
}

func TestItemStoreListByCollectionID_SortedByDate(t *testing.T) {
	d := openTestDB(t)
	collections := NewCollectionStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	c, err := collections.Create(ctx, "Alice", "R-100")
	require.NoError(t, err)
	other, err := collections.Create(ctx, "Bob", "R-200")
	require.NoError(t, err)

	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err = items.Create(ctx, newItem(t, c.ID, domain.ObjectCarton, late, domain.ContainerDetails{Contents: "Late"}))
	require.NoError(t, err)
	_, err = items.Create(ctx, newItem(t, c.ID, domain.ObjectCarton, early, domain.ContainerDetails{Contents: "Early"}))
	require.NoError(t, err)
	_, err = items.Create(ctx, newItem(t, other.ID, domain.ObjectCarton, early, domain.ContainerDetails{Contents: "Elsewhere"}))
	require.NoError(t, err)

	list, err := items.ListByCollectionID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	first, _ := list[0].Contents()
	second, _ := list[1].Contents()
	assert.Equal(t, "Early", first)
	assert.Equal(t, "Late", second)
}

func TestItemStoreListByCollectionID_Empty(t *testing.T) {
	d := openTestDB(t)
	collections := NewCollectionStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	c, err := collections.Create(ctx, "Alice", "R-100")
	require.NoError(t, err)

	list, err := items.ListByCollectionID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemStoreCreate_UnknownCollection(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)

	_, err := items.Create(context.Background(), newItem(t, 4242, domain.ObjectFurniture, time.Now(), domain.FurnitureDetails{}))
	assert.Error(t, err, "foreign key must reject an item without a collection")
}

func TestItemStoreDelete(t *testing.T) {
	d := openTestDB(t)
	collections := NewCollectionStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	c, err := collections.Create(ctx, "Alice", "R-100")
	require.NoError(t, err)
	saved, err := items.Create(ctx, newItem(t, c.ID, domain.ObjectPackage, time.Now(), domain.ContainerDetails{}))
	require.NoError(t, err)

	require.NoError(t, items.Delete(ctx, saved.ID))

	deleted, err := items.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestItemStoreDelete_NotFound(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)

	err := items.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

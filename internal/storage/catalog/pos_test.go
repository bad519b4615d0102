package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalgenie/backend/internal/storage/models"
)

func testPOSCatalog() models.POSCatalog {
	return models.POSCatalog{
		Groups: []models.POSGroup{
			{
				Name: "Food",
				Locations: []models.POSLocation{
					{
						Name: "Downtown",
						Items: []models.POSItem{
							{ID: "ITM-100", Name: "Burger", Price: 5.49, Discount: 0},
							{ID: "ITM-102", Name: "Fries", Price: 2.19, Discount: 0},
						},
					},
				},
			},
		},
	}
}

func writePOSFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pos.json")
	data, err := json.Marshal(testPOSCatalog())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFindItemCaseInsensitive(t *testing.T) {
	store := NewPOSStore(testPOSCatalog(), "")

	item, ok := store.FindItem("food", "DOWNTOWN", "burger")
	require.True(t, ok)
	assert.Equal(t, "ITM-100", item.ID)
	assert.Equal(t, 5.49, item.Price)
}

func TestFindItemMissing(t *testing.T) {
	store := NewPOSStore(testPOSCatalog(), "")

	_, ok := store.FindItem("Food", "Downtown", "Pizza")
	assert.False(t, ok)
}

func TestUpdateItemPricePersistsAtomically(t *testing.T) {
	path := writePOSFile(t)
	store, err := LoadPOS(path)
	require.NoError(t, err)

	oldPrice, item, err := store.UpdateItemPrice("Food", "Downtown", "Burger", 6.50)
	require.NoError(t, err)
	assert.Equal(t, 5.49, oldPrice)
	assert.Equal(t, 6.50, item.Price)

	// In-memory read-back.
	read, ok := store.FindItem("Food", "Downtown", "Burger")
	require.True(t, ok)
	assert.Equal(t, 6.50, read.Price)

	// On-disk read-back through a fresh store.
	reloaded, err := LoadPOS(path)
	require.NoError(t, err)
	read, ok = reloaded.FindItem("Food", "Downtown", "Burger")
	require.True(t, ok)
	assert.Equal(t, 6.50, read.Price)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateItemPriceMissingItem(t *testing.T) {
	store := NewPOSStore(testPOSCatalog(), "")

	_, _, err := store.UpdateItemPrice("Food", "Downtown", "Pizza", 9.99)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, uint64(0), store.Version())
}

func TestUpdateIncrementsVersion(t *testing.T) {
	store := NewPOSStore(testPOSCatalog(), "")

	_, _, err := store.UpdateItemPrice("Food", "Downtown", "Burger", 6.00)
	require.NoError(t, err)
	_, _, err = store.UpdateItemPrice("Food", "Downtown", "Fries", 2.50)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), store.Version())
}

func TestSnapshotIsIsolated(t *testing.T) {
	store := NewPOSStore(testPOSCatalog(), "")

	snap := store.Snapshot()
	snap.Groups[0].Locations[0].Items[0].Price = 99.99

	item, ok := store.FindItem("Food", "Downtown", "Burger")
	require.True(t, ok)
	assert.Equal(t, 5.49, item.Price)
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalgenie/backend/internal/storage/models"
)

func testCatalog() models.POSCatalog {
	return models.POSCatalog{
		Groups: []models.POSGroup{
			{
				Name: "Food",
				Locations: []models.POSLocation{
					{
						Name: "Downtown",
						Items: []models.POSItem{
							{ID: "ITM-100", Name: "Burger", Price: 5.49},
							{ID: "ITM-101", Name: "Cheeseburger", Price: 6.29},
							{ID: "ITM-102", Name: "Fries", Price: 2.19},
						},
					},
				},
			},
			{
				Name: "Beverages",
				Locations: []models.POSLocation{
					{
						Name: "Airport",
						Items: []models.POSItem{
							{ID: "ITM-200", Name: "Soda", Price: 1.99},
						},
					},
				},
			},
		},
	}
}

func TestExtractEntitiesFullResolution(t *testing.T) {
	e := ExtractEntities("set the burger price in food downtown to 6.50", testCatalog())

	assert.Equal(t, "Food", e.Group)
	assert.Equal(t, "Downtown", e.Location)
	assert.Equal(t, "Burger", e.Item)
	require.NotNil(t, e.Value)
	assert.Equal(t, 6.50, *e.Value)
}

func TestExtractEntitiesLongestMatchWins(t *testing.T) {
	// "cheeseburger" contains "burger"; the longer catalog name must win.
	e := ExtractEntities("price of the cheeseburger at food downtown", testCatalog())

	assert.Equal(t, "Cheeseburger", e.Item)
}

func TestExtractEntitiesUnresolvedFieldsStayEmpty(t *testing.T) {
	e := ExtractEntities("what is the weather like", testCatalog())

	assert.Empty(t, e.Group)
	assert.Empty(t, e.Location)
	assert.Empty(t, e.Item)
	assert.Nil(t, e.Value)
}

func TestExtractEntitiesValueParsing(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *float64
	}{
		{"integer", "set burger to 7", ptr(7.0)},
		{"two decimals", "set burger to 5.99", ptr(5.99)},
		{"trailing punctuation", "set burger to 5.99.", ptr(5.99)},
		{"digits inside words ignored", "sales for Reg2 downtown", nil},
		{"three decimals rejected", "set burger to 5.999", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ExtractEntities(tt.query, testCatalog())
			if tt.want == nil {
				assert.Nil(t, e.Value)
			} else {
				require.NotNil(t, e.Value)
				assert.Equal(t, *tt.want, *e.Value)
			}
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}

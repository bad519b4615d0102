package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRelativePeriodDates(t *testing.T) {
	e := NewFilterExtractor([]string{"Reg1", "Reg2", "Hilary", "All Locations"})
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	filters := e.Extract("sales last week", now)

	require.NotEmpty(t, filters.Dates)
	found := false
	for _, d := range filters.Dates {
		if d.Raw == "last week" {
			found = true
			assert.Equal(t, now.AddDate(0, 0, -7).Format(time.RFC3339), d.Parsed)
		}
	}
	assert.True(t, found, "expected a 'last week' date filter")
}

func TestExtractNeverReturnsShortSpans(t *testing.T) {
	e := NewFilterExtractor(nil)
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	queries := []string{
		"sales last week",
		"send me the numbers for yesterday",
		"labor to date",
	}

	for _, q := range queries {
		filters := e.Extract(q, now)
		for _, d := range filters.Dates {
			assert.Greater(t, len(d.Raw), 3, "query %q produced short span %q", q, d.Raw)
		}
	}
}

func TestExtractNoDatesInPlainQuery(t *testing.T) {
	e := NewFilterExtractor(nil)
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	filters := e.Extract("gross margin by store", now)

	assert.Empty(t, filters.Dates)
}

func TestExtractLocationsCaseInsensitive(t *testing.T) {
	e := NewFilterExtractor([]string{"Reg1", "Reg2", "Hilary", "All Locations"})
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	filters := e.Extract("show sales for reg1 and HILARY", now)

	assert.Equal(t, []string{"Reg1", "Hilary"}, filters.Locations)
}

func TestExtractEmptyQuery(t *testing.T) {
	e := NewFilterExtractor([]string{"Reg1"})

	filters := e.Extract("", time.Now())

	assert.Empty(t, filters.Dates)
	assert.Empty(t, filters.Locations)
}

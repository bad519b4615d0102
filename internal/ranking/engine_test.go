package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalgenie/backend/internal/extract"
	"github.com/portalgenie/backend/internal/storage/catalog"
	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/internal/vector"
)

type stubEmbedder struct {
	vec []float32
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, nil
}

type stubFeedback map[string]float64

func (s stubFeedback) ScoreFor(reportID string) float64 {
	return s[reportID]
}

func testReports() []models.Report {
	return []models.Report{
		{
			ReportID:    "RPT-001",
			Name:        "Daily Sales Summary",
			Category:    "Sales",
			Description: "Sales totals per day",
			Columns:     []string{"Gross Sales", "Net Sales"},
		},
		{
			ReportID:    "RPT-002",
			Name:        "Labor Cost Report",
			Category:    "Labor",
			Description: "Labor hours and cost",
			Columns:     []string{"Labor Cost"},
		},
		{
			ReportID:    "RPT-003",
			Name:        "Inventory On Hand",
			Category:    "Inventory",
			Description: "Stock levels",
			Columns:     nil,
		},
	}
}

func newTestEngine(t *testing.T, queryVec []float32, fb stubFeedback, weight float64) *Engine {
	t.Helper()

	store := catalog.NewReportStore(testReports())

	index := vector.NewIndex(3)
	require.NoError(t, index.Add("RPT-001", []float32{1, 0, 0}))
	require.NoError(t, index.Add("RPT-002", []float32{0, 1, 0}))
	require.NoError(t, index.Add("RPT-003", []float32{0, 0, 1}))

	if fb == nil {
		fb = stubFeedback{}
	}

	return NewEngine(
		store,
		stubEmbedder{vec: queryVec},
		index,
		fb,
		extract.NewFilterExtractor([]string{"Reg1", "Reg2"}),
		Config{DefaultTopK: 3, BoostThreshold: 75, FeedbackWeight: weight},
	)
}

func TestSearchLexicalBoostForcesTopScore(t *testing.T) {
	engine := newTestEngine(t, []float32{0, 0.8, 0.6}, nil, 0.05)

	result, err := engine.Search(context.Background(), "gross sales", 3)
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	assert.Equal(t, "RPT-001", result.Matches[0].ReportID)
	assert.Equal(t, 1.0, result.Matches[0].Score)
}

func TestSearchBoostedNeverDisplacedBySemantic(t *testing.T) {
	// Strong negative feedback on the boosted report, strong positive on a
	// semantic one: the boosted report still ranks first.
	fb := stubFeedback{"RPT-001": -1, "RPT-002": 1}
	engine := newTestEngine(t, []float32{0, 1, 0}, fb, 0.1)

	result, err := engine.Search(context.Background(), "gross sales", 3)
	require.NoError(t, err)
	require.True(t, len(result.Matches) >= 2)

	assert.Equal(t, "RPT-001", result.Matches[0].ReportID)
}

func TestSearchSortedNonIncreasingNoDuplicates(t *testing.T) {
	engine := newTestEngine(t, []float32{0, 0.8, 0.6}, stubFeedback{"RPT-003": -1}, 0.05)

	result, err := engine.Search(context.Background(), "gross sales by location", 3)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, m := range result.Matches {
		assert.False(t, seen[m.ReportID], "duplicate reportId %s", m.ReportID)
		seen[m.ReportID] = true
		if i > 0 {
			assert.GreaterOrEqual(t, result.Matches[i-1].Score, m.Score)
		}
	}
}

func TestSearchFeedbackAdjustment(t *testing.T) {
	fb := stubFeedback{"RPT-002": 1, "RPT-003": -1}
	engine := newTestEngine(t, []float32{0, 0.8, 0.6}, fb, 0.05)

	result, err := engine.Search(context.Background(), "something about labor", 3)
	require.NoError(t, err)

	scores := map[string]float64{}
	for _, m := range result.Matches {
		scores[m.ReportID] = m.Score
	}

	assert.InDelta(t, 0.85, scores["RPT-002"], 1e-6)
	assert.InDelta(t, 0.55, scores["RPT-003"], 1e-6)
}

func TestSearchTopKLargerThanCorpus(t *testing.T) {
	engine := newTestEngine(t, []float32{0, 0.8, 0.6}, nil, 0)

	result, err := engine.Search(context.Background(), "anything", 50)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 3)
}

func TestSearchEmptyCorpus(t *testing.T) {
	engine := NewEngine(
		catalog.NewReportStore(nil),
		stubEmbedder{vec: []float32{1, 0, 0}},
		vector.NewIndex(3),
		stubFeedback{},
		extract.NewFilterExtractor(nil),
		Config{DefaultTopK: 3, BoostThreshold: 75},
	)

	result, err := engine.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestSearchReportWithoutColumnsNeverBoosts(t *testing.T) {
	engine := newTestEngine(t, []float32{0, 0.6, 0.8}, nil, 0)

	// Query exactly matching the column-less report's name still only
	// reaches it through the semantic pass.
	result, err := engine.Search(context.Background(), "inventory on hand", 3)
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	for _, m := range result.Matches {
		if m.ReportID == "RPT-003" {
			assert.Less(t, m.Score, 1.0)
		}
	}
}

func TestCombineScore(t *testing.T) {
	tests := []struct {
		name     string
		boosted  bool
		semantic float64
		feedback float64
		weight   float64
		want     float64
	}{
		{"semantic only", false, 0.5, 0, 0.1, 0.5},
		{"semantic plus positive feedback", false, 0.5, 1, 0.1, 0.6},
		{"boost discards semantic", true, 0.2, 0, 0.1, 1.0},
		{"clamped at one", false, 0.98, 1, 0.1, 1.0},
		{"clamped at zero", false, 0.02, -1, 0.1, 0.0},
		{"boost with negative feedback", true, 0, -1, 0.1, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, combineScore(tt.boosted, tt.semantic, tt.feedback, tt.weight), 1e-9)
		})
	}
}

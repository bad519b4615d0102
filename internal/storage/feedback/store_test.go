package feedback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalgenie/backend/internal/storage/models"
)

func TestAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")

	store := Load(path)
	require.NoError(t, store.Append("sales report", []string{"RPT-001", "RPT-002"}, models.FeedbackPositive))
	require.NoError(t, store.Append("labor report", []string{"RPT-002"}, models.FeedbackNegative))

	reloaded := Load(path)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, 1.0, reloaded.ScoreFor("RPT-001"))
}

func TestScoreForDerivation(t *testing.T) {
	records := []models.FeedbackRecord{
		{Query: "a", Matches: []string{"RPT-001"}, Feedback: models.FeedbackPositive},
		{Query: "b", Matches: []string{"RPT-001"}, Feedback: models.FeedbackPositive},
		{Query: "c", Matches: []string{"RPT-001"}, Feedback: models.FeedbackNegative},
		{Query: "d", Matches: []string{"RPT-002"}, Feedback: models.FeedbackNegative},
	}
	store := NewStore(records, "")

	// (2 - 1) / 3
	assert.InDelta(t, 1.0/3.0, store.ScoreFor("RPT-001"), 1e-9)
	assert.Equal(t, -1.0, store.ScoreFor("RPT-002"))
	assert.Equal(t, 0.0, store.ScoreFor("RPT-999"))
}

func TestScoreBounds(t *testing.T) {
	records := []models.FeedbackRecord{}
	for i := 0; i < 10; i++ {
		records = append(records, models.FeedbackRecord{
			Matches: []string{"RPT-001"}, Feedback: models.FeedbackPositive,
		})
	}
	store := NewStore(records, "")

	score := store.ScoreFor("RPT-001")
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.Equal(t, 1.0, score)
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	store := Load(path)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0.0, store.ScoreFor("RPT-001"))
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, 0, store.Len())
}

func TestAppendRejectsInvalidSentiment(t *testing.T) {
	store := NewStore(nil, "")

	err := store.Append("query", []string{"RPT-001"}, "meh")

	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestAppendRepeatedFeedbackAccumulates(t *testing.T) {
	store := NewStore(nil, "")

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append("same query", []string{"RPT-001"}, models.FeedbackNegative))
	}

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, -1.0, store.ScoreFor("RPT-001"))
}

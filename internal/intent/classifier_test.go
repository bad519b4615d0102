package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps every prototype phrase of an intent onto a fixed
// basis vector, so each prototype equals that basis exactly. Queries
// resolve through the byText map.
type stubEmbedder struct {
	byText map[string][]float32
}

var labelBasis = map[string][]float32{
	ReadData:     {1, 0, 0, 0},
	SearchReport: {0, 1, 0, 0},
	UpdateData:   {0, 0, 1, 0},
}

func newStubEmbedder() *stubEmbedder {
	byText := map[string][]float32{}
	for label, phrases := range prototypePhrases {
		for _, phrase := range phrases {
			byText[phrase] = labelBasis[label]
		}
	}
	return &stubEmbedder{byText: byText}
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.byText[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 0, 1}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func newTestClassifier(t *testing.T, stub *stubEmbedder) *Classifier {
	t.Helper()
	c, err := NewClassifier(context.Background(), stub, 0.55, 0.1)
	require.NoError(t, err)
	return c
}

func TestClassifyUpdateIntentWithAgreeingSignals(t *testing.T) {
	stub := newStubEmbedder()
	query := "update price of burger to 5.99"
	stub.byText[query] = []float32{0.2, 0, 0.9, 0}

	c := newTestClassifier(t, stub)

	label, scores, err := c.Classify(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, UpdateData, label)
	// Semantic alignment plus the keyword bonus for "update".
	assert.InDelta(t, 1.0, scores[UpdateData], 1e-6)
}

func TestClassifyNonsenseReturnsUnknown(t *testing.T) {
	stub := newStubEmbedder()
	c := newTestClassifier(t, stub)

	// Orthogonal to every prototype, no keyword hits.
	label, scores, err := c.Classify(context.Background(), "xylophone quantum zebra")
	require.NoError(t, err)

	assert.Equal(t, Unknown, label)
	assert.Len(t, scores, 3)
	for _, score := range scores {
		assert.Less(t, score, 0.55)
	}
}

func TestClassifyTieBreaksByLabelOrder(t *testing.T) {
	stub := newStubEmbedder()
	query := "ambiguous catalog question"
	// Equally aligned to read_data and update_data, no keyword hits.
	stub.byText[query] = []float32{0.7071, 0, 0.7071, 0}

	c := newTestClassifier(t, stub)

	label, _, err := c.Classify(context.Background(), query)
	require.NoError(t, err)

	// read_data sorts before update_data.
	assert.Equal(t, ReadData, label)
}

func TestClassifyAlwaysReturnsFullScoreMap(t *testing.T) {
	stub := newStubEmbedder()
	c := newTestClassifier(t, stub)

	_, scores, err := c.Classify(context.Background(), "show me the sales report")
	require.NoError(t, err)

	assert.Contains(t, scores, SearchReport)
	assert.Contains(t, scores, ReadData)
	assert.Contains(t, scores, UpdateData)
}

package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/embedding"
	"github.com/portalgenie/backend/pkg/logger"
)

// Intent labels. Unknown is returned when no intent clears the
// confidence threshold.
const (
	SearchReport = "search_report"
	ReadData     = "read_data"
	UpdateData   = "update_data"
	Unknown      = "unknown"
)

// Embedder is the slice of the embedding client the classifier needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// prototypePhrases seed each intent's prototype vector. The prototype is
// the renormalized mean of the phrase embeddings, computed once at startup.
var prototypePhrases = map[string][]string{
	SearchReport: {
		"show me the sales report",
		"find the daily transactions report",
		"which report shows labor costs",
		"I need a report about inventory",
		"search for discount reports",
	},
	ReadData: {
		"what is the price of the burger",
		"show me the price of fries at the downtown location",
		"how much does the cheeseburger cost",
		"get the current discount for the soda",
	},
	UpdateData: {
		"update the price of the burger to 5.99",
		"set the fries price to 2.50",
		"change the burger price at downtown to 6",
		"modify the price of the soda",
	},
}

// keywordHints earn a flat additive bonus when any entry is a substring
// of the lowercased query.
var keywordHints = map[string][]string{
	SearchReport: {"report", "show me", "find", "search"},
	ReadData:     {"price of", "how much", "what is the price", "discount of"},
	UpdateData:   {"update", "set", "change", "modify"},
}

type Classifier struct {
	embedder   Embedder
	prototypes map[string][]float32
	labels     []string
	threshold  float64
	bonus      float64
}

// NewClassifier embeds the prototype phrases and fixes the label
// iteration order so tie-breaks are deterministic.
func NewClassifier(ctx context.Context, embedder Embedder, threshold, bonus float64) (*Classifier, error) {
	labels := make([]string, 0, len(prototypePhrases))
	for label := range prototypePhrases {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	prototypes := make(map[string][]float32, len(labels))
	for _, label := range labels {
		vectors, err := embedder.EmbedBatch(ctx, prototypePhrases[label])
		if err != nil {
			return nil, fmt.Errorf("failed to embed prototypes for %s: %w", label, err)
		}
		prototypes[label] = embedding.MeanVector(vectors)
	}

	logger.Info("Intent prototypes computed",
		zap.Int("intents", len(labels)),
		zap.Float64("threshold", threshold),
	)

	return &Classifier{
		embedder:   embedder,
		prototypes: prototypes,
		labels:     labels,
		threshold:  threshold,
		bonus:      bonus,
	}, nil
}

// Classify scores the query against every prototype and returns the
// winning label with the full score map. There is no error path beyond
// the embedding call itself: a low-confidence query maps to Unknown.
func (c *Classifier) Classify(ctx context.Context, query string) (string, map[string]float64, error) {
	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed query: %w", err)
	}

	lowerQuery := strings.ToLower(query)

	scores := make(map[string]float64, len(c.labels))
	best := Unknown
	bestScore := -2.0

	for _, label := range c.labels {
		score := dot(queryVec, c.prototypes[label])

		for _, kw := range keywordHints[label] {
			if strings.Contains(lowerQuery, kw) {
				score += c.bonus
				break
			}
		}

		scores[label] = score
		if score > bestScore {
			best = label
			bestScore = score
		}
	}

	if bestScore < c.threshold {
		best = Unknown
	}

	logger.Debug("Query classified",
		zap.String("intent", best),
		zap.Float64("confidence", bestScore),
	)

	return best, scores, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

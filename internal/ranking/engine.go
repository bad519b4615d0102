package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/extract"
	"github.com/portalgenie/backend/internal/metrics"
	"github.com/portalgenie/backend/internal/storage/catalog"
	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/internal/vector"
	"github.com/portalgenie/backend/pkg/logger"
)

// Embedder is the slice of the embedding client the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the nearest-neighbor index over the report corpus.
type Searcher interface {
	Search(query []float32, k int) ([]vector.Hit, error)
}

// FeedbackScorer derives the net sentiment for a report in [-1, 1].
type FeedbackScorer interface {
	ScoreFor(reportID string) float64
}

type Config struct {
	DefaultTopK    int
	BoostThreshold int
	FeedbackWeight float64
}

// Engine merges three relevance signals into one ranked list: a lexical
// boost from fuzzy column matches, dense semantic similarity, and the
// accumulated feedback signal.
type Engine struct {
	reports  *catalog.ReportStore
	embedder Embedder
	index    Searcher
	feedback FeedbackScorer
	filters  *extract.FilterExtractor
	cfg      Config
}

type SearchResult struct {
	Query            string               `json:"query"`
	Matches          []models.ReportMatch `json:"matches"`
	SuggestedFilters extract.Filters      `json:"suggestedFilters"`
}

func NewEngine(reports *catalog.ReportStore, embedder Embedder, index Searcher, feedback FeedbackScorer, filters *extract.FilterExtractor, cfg Config) *Engine {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	if cfg.BoostThreshold <= 0 {
		cfg.BoostThreshold = 75
	}
	return &Engine{
		reports:  reports,
		embedder: embedder,
		index:    index,
		feedback: feedback,
		filters:  filters,
		cfg:      cfg,
	}
}

type candidate struct {
	report  *models.Report
	score   float64
	boosted bool
}

// Search ranks reports for the query. Boosted reports carry a forced
// score of 1.0 and always precede purely semantic matches; every merged
// entry is then adjusted by the feedback signal and clamped to [0, 1].
func (e *Engine) Search(ctx context.Context, query string, topK int) (*SearchResult, error) {
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	lowerQuery := strings.ToLower(query)

	// Lexical boost pass: first qualifying column wins, one boost per report.
	var candidates []candidate
	seen := map[string]bool{}
	reports := e.reports.All()
	for i := range reports {
		report := &reports[i]
		for _, col := range report.Columns {
			score := fuzzy.TokenSetRatio(strings.ToLower(col), lowerQuery)
			if score > e.cfg.BoostThreshold {
				candidates = append(candidates, candidate{report: report, score: 1.0, boosted: true})
				seen[report.ReportID] = true
				metrics.BoostHits.Inc()
				logger.Debug("Lexical boost",
					zap.String("report_id", report.ReportID),
					zap.String("column", col),
					zap.Int("fuzzy_score", score),
				)
				break
			}
		}
	}

	// Semantic pass. An embedding or index failure fails this request only.
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := e.index.Search(queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	// Merge: boosted entries keep their forced score.
	for _, hit := range hits {
		if seen[hit.ID] {
			continue
		}
		report, ok := e.reports.Get(hit.ID)
		if !ok {
			continue
		}
		seen[hit.ID] = true
		candidates = append(candidates, candidate{report: report, score: hit.Score})
	}

	// Feedback adjustment and final ordering.
	matches := make([]models.ReportMatch, 0, len(candidates))
	for _, c := range candidates {
		final := combineScore(c.boosted, c.score, e.feedback.ScoreFor(c.report.ReportID), e.cfg.FeedbackWeight)
		matches = append(matches, models.ReportMatch{
			ReportID:    c.report.ReportID,
			Name:        c.report.Name,
			Category:    c.report.Category,
			Description: c.report.Description,
			Score:       final,
			Filters:     c.report.Filters,
			Columns:     c.report.Columns,
		})
	}

	boosted := map[string]bool{}
	for _, c := range candidates {
		if c.boosted {
			boosted[c.report.ReportID] = true
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		ba, bb := boosted[matches[a].ReportID], boosted[matches[b].ReportID]
		if ba != bb {
			return ba
		}
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].ReportID < matches[b].ReportID
	})

	result := &SearchResult{
		Query:            query,
		Matches:          matches,
		SuggestedFilters: e.filters.Extract(query, time.Now()),
	}

	logger.Info("Report search completed",
		zap.String("query", query),
		zap.Int("boosted", len(boosted)),
		zap.Int("matches", len(matches)),
	)

	return result, nil
}

// combineScore folds the three relevance signals and the feedback weight
// into the final score. A lexical boost forces the base to 1.0 and
// discards the semantic score; the result is clamped to [0, 1].
func combineScore(boosted bool, semantic, feedbackScore, weight float64) float64 {
	base := semantic
	if boosted {
		base = 1.0
	}

	final := base + weight*feedbackScore
	if final < 0 {
		return 0
	}
	if final > 1 {
		return 1
	}
	return final
}

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	rediscache "github.com/portalgenie/backend/internal/cache/redis"
	"github.com/portalgenie/backend/internal/extract"
	"github.com/portalgenie/backend/internal/intent"
	"github.com/portalgenie/backend/internal/metrics"
	"github.com/portalgenie/backend/internal/pos"
	"github.com/portalgenie/backend/internal/ranking"
	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/internal/storage/sqlite"
	"github.com/portalgenie/backend/pkg/logger"
	"github.com/portalgenie/backend/pkg/utils"
)

// Engine routes a free-text query to the report ranking engine or a POS
// handler based on its classified intent.
type Engine struct {
	classifier *intent.Classifier
	ranker     *ranking.Engine
	posService *pos.Service
	db         *sqlite.Client
	cache      *rediscache.Client
	cacheTTL   time.Duration
}

// AssistantResponse carries either a ranked report list or a POS
// read/update result, plus the intent score map for observability.
type AssistantResponse struct {
	Query            string               `json:"query"`
	Intent           string               `json:"intent"`
	IntentScores     map[string]float64   `json:"intentScores"`
	Matches          []models.ReportMatch `json:"matches,omitempty"`
	SuggestedFilters *extract.Filters     `json:"suggestedFilters,omitempty"`
	Status           string               `json:"status,omitempty"`
	Action           string               `json:"action,omitempty"`
	Message          string               `json:"message,omitempty"`
	Item             *models.ItemResult   `json:"item,omitempty"`
}

func NewEngine(classifier *intent.Classifier, ranker *ranking.Engine, posService *pos.Service, db *sqlite.Client, cache *rediscache.Client, cacheTTL time.Duration) *Engine {
	return &Engine{
		classifier: classifier,
		ranker:     ranker,
		posService: posService,
		db:         db,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// ProcessQuery classifies the query and dispatches it. Embedding
// failures fail only the current request.
func (e *Engine) ProcessQuery(ctx context.Context, queryText string, topK int) (*AssistantResponse, error) {
	start := time.Now()

	label, scores, err := e.classifier.Classify(ctx, queryText)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("failed to classify query: %w", err)
	}
	metrics.IntentConfidence.Observe(scores[label])

	resp := &AssistantResponse{
		Query:        queryText,
		Intent:       label,
		IntentScores: scores,
	}

	status := "ok"
	matchCount := 0

	switch label {
	case intent.SearchReport:
		result, err := e.ranker.Search(ctx, queryText, topK)
		if err != nil {
			metrics.QueryTotal.WithLabelValues(label, "error").Inc()
			return nil, err
		}
		resp.Matches = result.Matches
		resp.SuggestedFilters = &result.SuggestedFilters
		matchCount = len(result.Matches)

	case intent.ReadData:
		result := e.posService.Read(queryText)
		resp.Status = result.Status
		resp.Action = result.Action
		resp.Message = result.Message
		resp.Item = result.Item
		status = result.Status

	case intent.UpdateData:
		result := e.posService.Update(queryText)
		resp.Status = result.Status
		resp.Action = result.Action
		resp.Message = result.Message
		resp.Item = result.Item
		status = result.Status

	default:
		resp.Status = "unknown_intent"
		resp.Message = "Sorry, I could not understand the request. Try asking for a report or a POS item price."
		status = "unknown_intent"
	}

	latency := time.Since(start)
	metrics.QueryTotal.WithLabelValues(label, status).Inc()
	metrics.QueryDuration.WithLabelValues(label).Observe(latency.Seconds())

	e.recordHistory(queryText, label, status, matchCount, latency)

	logger.Info("Query processed",
		zap.String("intent", label),
		zap.String("status", status),
		zap.Int("matches", matchCount),
		zap.Duration("latency", latency),
	)

	return resp, nil
}

// SearchReports is the direct report search path, bypassing intent
// classification. Responses are cached until feedback shifts the ranking.
func (e *Engine) SearchReports(ctx context.Context, queryText string, topK int) (*ranking.SearchResult, error) {
	start := time.Now()

	var cacheKey string
	if e.cache != nil {
		cacheKey = utils.HashString(fmt.Sprintf("%s|%d", queryText, topK))
		var cached ranking.SearchResult
		if ok, err := e.cache.GetSearch(ctx, cacheKey, &cached); err == nil && ok {
			metrics.CacheHits.WithLabelValues("search").Inc()
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("search").Inc()
	}

	result, err := e.ranker.Search(ctx, queryText, topK)
	if err != nil {
		metrics.QueryTotal.WithLabelValues(intent.SearchReport, "error").Inc()
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.SetSearch(ctx, cacheKey, result, e.cacheTTL); err != nil {
			logger.Warn("Failed to cache search response", zap.Error(err))
		}
	}

	latency := time.Since(start)
	metrics.QueryTotal.WithLabelValues(intent.SearchReport, "ok").Inc()
	metrics.QueryDuration.WithLabelValues(intent.SearchReport).Observe(latency.Seconds())
	metrics.MatchCount.Observe(float64(len(result.Matches)))

	e.recordHistory(queryText, intent.SearchReport, "ok", len(result.Matches), latency)

	return result, nil
}

// InvalidateSearchCache is called after feedback lands.
func (e *Engine) InvalidateSearchCache(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateSearchCache(ctx); err != nil {
		logger.Warn("Failed to invalidate search cache", zap.Error(err))
	}
}

func (e *Engine) recordHistory(queryText, label, status string, matchCount int, latency time.Duration) {
	if e.db == nil {
		return
	}

	record := &models.QueryRecord{
		ID:         uuid.New().String(),
		QueryText:  queryText,
		Intent:     label,
		Status:     status,
		MatchCount: matchCount,
		LatencyMS:  int(latency.Milliseconds()),
		CreatedAt:  time.Now(),
	}

	// History is best effort; a write failure must not fail the query.
	if err := e.db.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to record query history", zap.Error(err))
	}
}

func (e *Engine) QueryHistory(limit int) ([]models.QueryRecord, error) {
	if e.db == nil {
		return nil, nil
	}
	return e.db.GetQueryHistory(limit)
}

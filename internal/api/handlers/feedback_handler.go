package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/metrics"
	"github.com/portalgenie/backend/internal/query"
	"github.com/portalgenie/backend/internal/storage/feedback"
	"github.com/portalgenie/backend/internal/storage/sqlite"
	"github.com/portalgenie/backend/pkg/logger"
)

type FeedbackHandler struct {
	store  *feedback.Store
	db     *sqlite.Client
	engine *query.Engine
}

func NewFeedbackHandler(store *feedback.Store, db *sqlite.Client, engine *query.Engine) *FeedbackHandler {
	return &FeedbackHandler{store: store, db: db, engine: engine}
}

// HandleFeedback appends a feedback record. A persistence failure is
// surfaced as an error status; report search stays available regardless.
func (h *FeedbackHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		Query    string   `json:"query"`
		Matches  []string `json:"matches"`
		Feedback string   `json:"feedback"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" || len(req.Matches) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query and matches are required",
		})
	}

	if err := h.store.Append(req.Query, req.Matches, req.Feedback); err != nil {
		logger.Error("Failed to record feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record feedback",
		})
	}

	metrics.FeedbackTotal.WithLabelValues(req.Feedback).Inc()

	if h.db != nil {
		if err := h.db.InsertFeedbackAudit(req.Query, req.Matches, req.Feedback); err != nil {
			logger.Warn("Failed to write feedback audit row", zap.Error(err))
		}
	}

	// Cached search responses predate this feedback.
	h.engine.InvalidateSearchCache(c.Context())

	return c.JSON(fiber.Map{
		"message": "Feedback recorded",
		"records": h.store.Len(),
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/query"
	"github.com/portalgenie/backend/pkg/logger"
)

type SearchHandler struct {
	engine *query.Engine
}

func NewSearchHandler(engine *query.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	result, err := h.engine.SearchReports(c.Context(), req.Query, req.TopK)
	if err != nil {
		logger.Error("Failed to search reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search reports",
		})
	}

	return c.JSON(result)
}

func (h *SearchHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	records, err := h.engine.QueryHistory(limit)
	if err != nil {
		logger.Error("Failed to get query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get query history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		history = append(history, fiber.Map{
			"id":          r.ID,
			"query":       r.QueryText,
			"intent":      r.Intent,
			"status":      r.Status,
			"match_count": r.MatchCount,
			"latency_ms":  r.LatencyMS,
			"created_at":  r.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"history": history})
}

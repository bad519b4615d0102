package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/query"
	"github.com/portalgenie/backend/pkg/logger"
)

type AssistantHandler struct {
	engine *query.Engine
}

func NewAssistantHandler(engine *query.Engine) *AssistantHandler {
	return &AssistantHandler{engine: engine}
}

func (h *AssistantHandler) HandleAssistant(c *fiber.Ctx) error {
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

	resp, err := h.engine.ProcessQuery(c.Context(), req.Query, req.TopK)
	if err != nil {
		logger.Error("Failed to process query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process query",
		})
	}

	return c.JSON(resp)
}

package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/query"
	"github.com/portalgenie/backend/pkg/logger"
)

// WebSocketHandler drives the chat drawer: one query message in, a
// streamed status/message plus the structured payload out.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			TopK    int    `json:"top_k"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "query" || msg.Content == "" {
			continue
		}

		if err := h.streamResponse(c, msg.Content, msg.TopK); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, queryText string, topK int) error {
	h.sendChunk(c, "status", "Processing query...")

	resp, err := h.engine.ProcessQuery(context.Background(), queryText, topK)
	if err != nil {
		return err
	}

	if resp.Message != "" {
		words := strings.Fields(resp.Message)
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			if err := h.sendChunk(c, "chunk", chunk); err != nil {
				return err
			}
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":             "complete",
		"intent":           resp.Intent,
		"matches":          resp.Matches,
		"suggestedFilters": resp.SuggestedFilters,
		"status":           resp.Status,
		"action":           resp.Action,
		"item":             resp.Item,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

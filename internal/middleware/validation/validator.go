package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(union\s+select|insert\s+into|drop\s+table|exec\s|<script|javascript:)`)
	queryPaths          = []string{"/api/v1/search", "/api/v1/assistant", "/api/v1/feedback"}
)

type Config struct {
	MaxQueryLength int
	Logger         *zap.Logger
}

// Middleware screens the free-text query field on the POST endpoints.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 2000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !isQueryPath(c.Path()) {
			return c.Next()
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		query, ok := req["query"].(string)
		if !ok || strings.TrimSpace(query) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required and must be a string",
			})
		}

		if len(query) > cfg.MaxQueryLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query exceeds maximum length",
			})
		}

		if sqlInjectionPattern.MatchString(query) {
			cfg.Logger.Warn("Suspicious query content rejected",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query content",
			})
		}

		return c.Next()
	}
}

func isQueryPath(path string) bool {
	for _, p := range queryPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dealseek-core/internal/usecase"
)

var validate = validator.New()

type SearchHandler struct {
	orchestrator *usecase.Orchestrator
}

func NewSearchHandler(orch *usecase.Orchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: orch}
}

type chatRequest struct {
	Message string `json:"message" validate:"required,min=1"`
	UserID  string `json:"user_id"`
}

// HandleChat runs one message through the pipeline. The pipeline itself
// never errors; everything it reports lives inside the result payload.
func (h *SearchHandler) HandleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	result := h.orchestrator.ProcessMessage(c.Context(), req.Message, req.UserID)

	formatted := ""
	if result.Response != nil {
		formatted = usecase.FormatProductsForChat(result.Response, req.Message)
	}

	if result.Response != nil {
		c.Set("X-Search-Cache-Hit", "false")
		if result.Response.Cached {
			c.Set("X-Search-Cache-Hit", "true")
		}
	}

	return c.Status(200).JSON(fiber.Map{
		"result":    result,
		"formatted": formatted,
	})
}

// HandleStats exposes read-only cache and popularity introspection.
func (h *SearchHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.orchestrator.Stats(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "stats unavailable"})
	}
	return c.Status(200).JSON(stats)
}

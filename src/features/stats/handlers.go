package stats

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the stats feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new stats handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStats returns catalog statistics. HTMX requests get the rendered
// dashboard card, everything else gets JSON.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	slog.Debug("GetStats handler called")
	stats, err := h.service.Get(c.Context())
	if err != nil {
		slog.Error("Failed to compute stats", "error", err)
		if c.Get("HX-Request") == "true" {
			return c.Render("cards/stats_error", fiber.Map{
				"Error": "Could not reach the workspace",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	if c.Get("HX-Request") == "true" {
		return c.Render("cards/stats", fiber.Map{
			"Stats": stats,
		})
	}
	return c.JSON(stats)
}

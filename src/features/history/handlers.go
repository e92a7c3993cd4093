package history

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the history feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new history handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetRuns returns recent runs. HTMX requests get the rendered table,
// everything else gets JSON.
func (h *Handler) GetRuns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	runs, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to load run history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if c.Get("HX-Request") == "true" {
		return c.Render("history/run_list", fiber.Map{
			"Runs": runs,
		})
	}
	return c.JSON(runs)
}

// GetRun returns one run with its per-album outcomes.
func (h *Handler) GetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.service.Get(c.Context(), id)
	if err != nil {
		slog.Error("Failed to load run", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	if c.Get("HX-Request") == "true" {
		return c.Render("history/run_detail", fiber.Map{
			"Run": run,
		})
	}
	return c.JSON(run)
}

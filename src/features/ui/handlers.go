package ui

import (
	"log/slog"

	"waxwing/src/features/config"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the UI feature.
type Handler struct {
	configManager *config.Manager
}

// NewHandler creates a new handler for the UI feature.
func NewHandler(configManager *config.Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// RenderDashboard renders the main dashboard page.
func (h *Handler) RenderDashboard(c *fiber.Ctx) error {
	slog.Debug("RenderDashboard handler called")
	cfg := h.configManager.Get()
	data := fiber.Map{
		"Title":          "Dashboard",
		"HistoryEnabled": cfg.History.Enabled,
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "dashboard"
		return c.Render("main", data)
	}
	return c.Render("sections/dashboard", data)
}

// RenderHistorySection renders the run history page.
func (h *Handler) RenderHistorySection(c *fiber.Ctx) error {
	slog.Debug("RenderHistorySection handler called")
	data := fiber.Map{
		"Title": "History",
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "history"
		return c.Render("main", data)
	}
	return c.Render("sections/history", data)
}

// RenderJobsSection renders the jobs page.
func (h *Handler) RenderJobsSection(c *fiber.Ctx) error {
	slog.Debug("RenderJobsSection handler called")
	data := fiber.Map{
		"Title": "Jobs",
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "jobs"
		return c.Render("main", data)
	}
	return c.Render("sections/jobs", data)
}

// GetSettingsSection renders the settings form with current configuration values.
func (h *Handler) GetSettingsSection(c *fiber.Ctx) error {
	slog.Debug("GetSettingsSection handler called")
	data := fiber.Map{
		"Title": "Settings",
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "settings"
		return c.Render("main", data)
	}
	return c.Render("sections/settings", data)
}

// GetSorterCard renders the sorter controls card for the dashboard.
func (h *Handler) GetSorterCard(c *fiber.Ctx) error {
	slog.Debug("GetSorterCard handler called")
	cfg := h.configManager.Get()
	return c.Render("cards/sorter", fiber.Map{
		"DefaultKey": cfg.Sorting.DefaultKey,
		"Compact":    cfg.Sorting.Compact,
	})
}

// GetArtworkCard renders the cover decorator card for the dashboard.
func (h *Handler) GetArtworkCard(c *fiber.Ctx) error {
	slog.Debug("GetArtworkCard handler called")
	cfg := h.configManager.Get()
	return c.Render("cards/artwork", fiber.Map{
		"UpdateExisting": cfg.Artwork.UpdateExisting,
	})
}

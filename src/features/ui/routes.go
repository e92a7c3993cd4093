package ui

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the UI feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
	ui := app.Group("/ui")
	ui.Get("/", handler.RenderDashboard)
	ui.Get("/dashboard", handler.RenderDashboard)
	ui.Get("/history", handler.RenderHistorySection)
	ui.Get("/jobs", handler.RenderJobsSection)
	ui.Get("/settings", handler.GetSettingsSection)

	// Dashboard card endpoints
	ui.Get("/sorter-card", handler.GetSorterCard)
	ui.Get("/artwork-card", handler.GetArtworkCard)
}

package stats

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers stats-related routes.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/stats", handler.GetStats)
	app.Get("/ui/stats", handler.GetStats)
}

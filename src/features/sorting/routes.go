package sorting

import (
	"waxwing/src/features/jobs"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers sorting-related routes.
func RegisterRoutes(app *fiber.App, service *Service, jobService jobs.JobService) {
	handler := NewHandler(service, jobService)

	app.Post("/sort/run", handler.StartSort)
	app.Post("/sort/cleanup", handler.StartCleanup)
	app.Get("/sort/plan", handler.GetPlan)
}

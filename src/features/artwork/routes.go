package artwork

import (
	"waxwing/src/features/jobs"
	"waxwing/src/infra/imaging"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers artwork-related routes.
func RegisterRoutes(app *fiber.App, service *Service, jobService jobs.JobService, imagingService *imaging.Service) {
	handler := NewHandler(service, jobService, imagingService)

	app.Post("/artwork/run", handler.StartRun)
	app.Get("/artwork/providers", handler.GetProviders)
	app.Get("/artwork/thumbnail", handler.GetThumbnail)
}

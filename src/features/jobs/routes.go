package jobs

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)
	jobs := app.Group("/jobs")
	uiJobs := app.Group("/ui/jobs")
	uiJobs.Get("/active", handler.HandleActiveJobs)
	uiJobs.Get("/list", handler.HandleFinishedJobsList)
	uiJobs.Get("/latest", handler.HandleLatestJobs)
	uiJobs.Post("/clear-finished", handler.HandleClearFinishedJobs)

	jobs.Get("/", handler.HandleJobList)
	jobs.Post("/cleanup", handler.HandleCleanupJobs)
	jobs.Post("/start/:type", handler.HandleStartJob)
	jobs.Get("/:id", handler.HandleJobStatus)
	jobs.Get("/:id/progress", handler.HandleJobProgress)
	jobs.Get("/:id/logs", handler.HandleJobLogs)
	jobs.Post("/:id/cancel", handler.HandleCancelJob)
}

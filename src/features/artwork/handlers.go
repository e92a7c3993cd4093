package artwork

import (
	"log/slog"

	"waxwing/src/features/jobs"
	"waxwing/src/features/metrics"
	"waxwing/src/infra/imaging"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the artwork feature.
type Handler struct {
	service *Service
	jobs    jobs.JobService
	imaging *imaging.Service
}

// NewHandler creates a new artwork handler.
func NewHandler(service *Service, jobService jobs.JobService, imagingService *imaging.Service) *Handler {
	return &Handler{service: service, jobs: jobService, imaging: imagingService}
}

// StartRun kicks off an asynchronous cover decoration job.
func (h *Handler) StartRun(c *fiber.Ctx) error {
	slog.Debug("StartRun handler called")
	metadata := map[string]any{}
	if c.FormValue("update_existing") == "on" || c.Query("update_existing") == "true" {
		metadata["updateExisting"] = true
	}

	jobID, err := h.jobs.StartJob("update_covers", "Update covers", metadata)
	if err != nil {
		slog.Error("Failed to start covers job", "error", err)
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to start covers job: " + err.Error(),
		})
	}
	metrics.RunsStarted.WithLabelValues("covers").Inc()
	slog.Info("Covers job started", "jobID", jobID)
	c.Response().Header.Set("HX-Trigger", "jobStarted")
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Cover update started!",
	})
}

// GetProviders lists the provider chain and whether each is enabled.
func (h *Handler) GetProviders(c *fiber.Ctx) error {
	type providerInfo struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	var out []providerInfo
	for _, p := range h.service.Providers() {
		out = append(out, providerInfo{Name: p.Name(), Enabled: p.IsEnabled()})
	}
	return c.JSON(out)
}

// GetThumbnail proxies a resized thumbnail of a remote cover image.
func (h *Handler) GetThumbnail(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing url parameter")
	}
	data, err := h.imaging.Thumbnail(c.Context(), url)
	if err != nil {
		slog.Warn("Thumbnail generation failed", "url", url, "error", err)
		return c.Status(fiber.StatusBadGateway).SendString("could not fetch image")
	}
	c.Set("Content-Type", "image/jpeg")
	c.Set("Cache-Control", "public, max-age=86400")
	return c.Send(data)
}

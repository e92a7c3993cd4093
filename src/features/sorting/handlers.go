package sorting

import (
	"log/slog"

	"waxwing/src/features/jobs"
	"waxwing/src/features/metrics"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the sorting feature.
type Handler struct {
	service *Service
	jobs    jobs.JobService
}

// NewHandler creates a new sorting handler.
func NewHandler(service *Service, jobService jobs.JobService) *Handler {
	return &Handler{service: service, jobs: jobService}
}

// StartSort kicks off an asynchronous sort job.
func (h *Handler) StartSort(c *fiber.Ctx) error {
	slog.Debug("StartSort handler called")
	metadata := map[string]any{}
	if key := c.FormValue("key", c.Query("key")); key != "" {
		if _, err := ParseKey(key); err != nil {
			return c.Render("toast/toastErr", fiber.Map{
				"Msg": "Unknown sort key: " + key,
			})
		}
		metadata["key"] = key
	}
	if c.FormValue("descending") == "on" || c.Query("descending") == "true" {
		metadata["descending"] = true
	}
	if c.FormValue("compact") == "on" || c.Query("compact") == "true" {
		metadata["compact"] = true
	}

	jobID, err := h.jobs.StartJob("sort_albums", "Sort albums", metadata)
	if err != nil {
		slog.Error("Failed to start sort job", "error", err)
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to start sort job: " + err.Error(),
		})
	}
	metrics.RunsStarted.WithLabelValues("sort").Inc()
	slog.Info("Sort job started", "jobID", jobID)
	c.Response().Header.Set("HX-Trigger", "jobStarted")
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Sort started!",
	})
}

// StartCleanup kicks off an asynchronous position option cleanup job.
func (h *Handler) StartCleanup(c *fiber.Ctx) error {
	slog.Debug("StartCleanup handler called")
	jobID, err := h.jobs.StartJob("cleanup_positions", "Clean up position options", nil)
	if err != nil {
		slog.Error("Failed to start cleanup job", "error", err)
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to start cleanup job: " + err.Error(),
		})
	}
	metrics.RunsStarted.WithLabelValues("cleanup").Inc()
	slog.Info("Cleanup job started", "jobID", jobID)
	c.Response().Header.Set("HX-Trigger", "jobStarted")
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Position cleanup started!",
	})
}

// GetPlan previews the changes a sort would write, without applying them.
func (h *Handler) GetPlan(c *fiber.Ctx) error {
	req := Request{Key: Key(h.service.config.Get().Sorting.DefaultKey)}
	if key := c.Query("key"); key != "" {
		parsed, err := ParseKey(key)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		req.Key = parsed
	}
	req.Descending = c.Query("descending") == "true"
	req.Compact = c.Query("compact") == "true"

	albums, err := h.service.workspace.ListAlbums(c.Context())
	if err != nil {
		slog.Error("Failed to read albums for plan", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	plan := BuildPlan(albums, req)

	type plannedChange struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		From     string `json:"from"`
		Position string `json:"position"`
	}
	changes := make([]plannedChange, 0, len(plan.Changes))
	for _, ch := range plan.Changes {
		changes = append(changes, plannedChange{
			ID:       ch.Album.ID,
			Title:    ch.Album.Title,
			Artist:   ch.Album.Artist,
			From:     ch.Album.Position,
			Position: ch.Position,
		})
	}
	return c.JSON(fiber.Map{
		"total":   plan.Total,
		"width":   plan.Width,
		"changes": changes,
	})
}

package config

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
	configPath    string
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager, configPath string) *Handler {
	return &Handler{
		configManager: configManager,
		configPath:    configPath,
	}
}

// GetConfig returns the redacted configuration as JSON.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	c.Set("Content-Type", "application/json")
	return c.SendString(h.configManager.GetJSON())
}

// GetConfigForm renders the settings form.
func (h *Handler) GetConfigForm(c *fiber.Ctx) error {
	cfg := h.configManager.Get()
	return c.Render("config/settings_form", fiber.Map{
		"Config": cfg,
		"YAML":   h.configManager.GetYAML(),
	})
}

// UpdateSettings handles the form submission to update configuration.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	current := h.configManager.Get()
	updated := *current

	if v := c.FormValue("sorting.default_key"); v != "" {
		updated.Sorting.DefaultKey = v
	}
	updated.Sorting.Compact = c.FormValue("sorting.compact") == "true"
	updated.Artwork.UpdateExisting = c.FormValue("artwork.update_existing") == "true"
	updated.Artwork.ValidateImages = c.FormValue("artwork.validate_images") == "true"
	if v := c.FormValue("artwork.min_dimension"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			updated.Artwork.MinDimension = n
		}
	}
	if v := c.FormValue("workspace.position_property"); v != "" {
		updated.Workspace.PositionProperty = v
	}
	if v := c.FormValue("workspace.status_property"); v != "" {
		updated.Workspace.StatusProperty = v
	}

	h.configManager.Update(&updated)
	if err := h.configManager.Save(h.configPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to save configuration: " + err.Error(),
		})
	}

	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Configuration saved",
	})
}

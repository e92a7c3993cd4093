package hosting

import (
	"fmt"
	"log/slog"

	"waxwing/src/features/artwork"
	"waxwing/src/features/config"
	"waxwing/src/features/history"
	"waxwing/src/features/jobs"
	"waxwing/src/features/metrics"
	"waxwing/src/features/sorting"
	"waxwing/src/features/stats"
	"waxwing/src/features/ui"
	"waxwing/src/infra/imaging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, configPath string, sortingService *sorting.Service, artworkService *artwork.Service, statsService *stats.Service, historyService *history.Service, jobService *jobs.Service, imagingService *imaging.Service) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	// Add custom template functions
	engine.AddFunc("isDebug", func() bool {
		return cfg.Get().Logger.HTMXDebug
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	engine.AddFunc("percent", func(part, total int) int {
		if total == 0 {
			return 0
		}
		return part * 100 / total
	})

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Waxwing",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(HTMXMiddleware())
	app.Use(LogAllRequestsMiddleware())

	app.Static("/", "./public")
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	uiHandler := ui.NewHandler(cfg)

	ui.RegisterRoutes(app, uiHandler)
	config.RegisterRoutes(app, cfg, configPath)
	jobs.RegisterRoutes(app, jobService)
	sorting.RegisterRoutes(app, sortingService, jobService)
	artwork.RegisterRoutes(app, artworkService, jobService, imagingService)
	stats.RegisterRoutes(app, statsService)
	// Always registered: the service tolerates a nil repository, so the
	// page renders an empty run list when history is disabled.
	history.RegisterRoutes(app, historyService)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

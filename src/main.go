package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"

	"waxwing/src/features/artwork"
	"waxwing/src/features/config"
	"waxwing/src/features/history"
	"waxwing/src/features/hosting"
	"waxwing/src/features/jobs"
	"waxwing/src/features/logging"
	"waxwing/src/features/sorting"
	"waxwing/src/features/stats"
	"waxwing/src/infra/covers"
	"waxwing/src/infra/historydb"
	"waxwing/src/infra/imaging"
	"waxwing/src/infra/workspace"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Reload the config when the file changes on disk
	configWatcher, err := config.NewWatcher(cfgManager, "config.yaml")
	if err != nil {
		slog.Warn("Config watcher unavailable", "error", err)
	} else if err := configWatcher.Start(); err != nil {
		slog.Warn("Failed to start config watcher", "error", err)
	} else {
		defer configWatcher.Stop()
	}

	// Workspace API client
	workspaceClient := workspace.NewClient(cfgManager)

	// Image fetching and validation
	imagingService := imaging.NewService(cfgManager)

	// Run history store
	var historyRepo history.Repository
	if cfgManager.Get().History.Enabled {
		store, err := historydb.NewSqliteStore(cfgManager.Get().History.Path)
		if err != nil {
			log.Fatalf("failed to open history store: %v", err)
		}
		defer store.Close()
		historyRepo = store
	}
	historyService := history.NewService(historyRepo)

	// Create the job service
	jobService := jobs.NewService(&cfgManager.Get().Jobs)

	// Create the sorting service
	sortingService := sorting.NewService(workspaceClient, cfgManager)

	// Artwork providers in configured lookup order
	providers := buildProviders(cfgManager)
	artworkService := artwork.NewService(workspaceClient, providers, imagingService, cfgManager)

	// Stats over the catalog
	statsService := stats.NewService(workspaceClient)

	// Register job tasks
	jobService.RegisterHandler("sort_albums", jobs.NewBaseTaskHandler(sorting.NewSortTask(sortingService, historyService)))
	jobService.RegisterHandler("cleanup_positions", jobs.NewBaseTaskHandler(sorting.NewCleanupTask(sortingService, historyService)))
	jobService.RegisterHandler("update_covers", jobs.NewBaseTaskHandler(artwork.NewCoversTask(artworkService, historyService)))

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		var err error
		telegramBot, err = hosting.NewTelegramBot(cfgManager, sortingService, artworkService, statsService, jobService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, "config.yaml", sortingService, artworkService, statsService, historyService, jobService, imagingService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}

// buildProviders assembles the artwork provider chain from config.
func buildProviders(cfgManager *config.Manager) []artwork.Provider {
	cfg := cfgManager.Get().Providers
	var providers []artwork.Provider
	for _, name := range cfg.Order {
		entry := cfg.Entries[name]
		switch name {
		case "spotify":
			var id, secret string
			if entry.ID != nil {
				id = *entry.ID
			}
			if entry.Secret != nil {
				secret = *entry.Secret
			}
			enabled := entry.Enabled && id != "" && secret != ""
			if entry.Enabled && !enabled {
				slog.Warn("Spotify provider disabled: missing credentials")
			}
			providers = append(providers, covers.NewSpotifyProvider(enabled, id, secret))
		case "deezer":
			providers = append(providers, covers.NewDeezerProvider(entry.Enabled))
		case "coverartarchive":
			providers = append(providers, covers.NewCoverArtArchiveProvider(entry.Enabled))
		default:
			slog.Warn("Unknown artwork provider in config", "name", name)
		}
	}
	return providers
}

package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// setProviderCredentials fills a provider's id/secret from environment variables.
func setProviderCredentials(cfg *Config, providerName, idVar, secretVar string) {
	id := os.Getenv(idVar)
	secret := os.Getenv(secretVar)
	if id == "" && secret == "" {
		return
	}
	if cfg.Providers.Entries == nil {
		cfg.Providers.Entries = make(map[string]Provider)
	}
	provider := cfg.Providers.Entries[providerName]
	if id != "" {
		provider.ID = &id
	}
	if secret != "" {
		provider.Secret = &secret
	}
	cfg.Providers.Entries[providerName] = provider
}

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		cfg := defaultConfig

		if err := saveDefaultConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		applyEnvOverrides(&cfg)
		return NewManager(&cfg), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return NewManager(&cfg), nil
}

// applyDefaults fills values the yaml file may leave out.
func applyDefaults(cfg *Config) {
	if cfg.Workspace.APIVersion == "" {
		cfg.Workspace.APIVersion = defaultConfig.Workspace.APIVersion
	}
	if cfg.Workspace.RequestsPerSecond <= 0 {
		cfg.Workspace.RequestsPerSecond = defaultConfig.Workspace.RequestsPerSecond
	}
	if cfg.Workspace.TitleProperty == "" {
		cfg.Workspace.TitleProperty = defaultConfig.Workspace.TitleProperty
	}
	if cfg.Workspace.ArtistProperty == "" {
		cfg.Workspace.ArtistProperty = defaultConfig.Workspace.ArtistProperty
	}
	if cfg.Workspace.PositionProperty == "" {
		cfg.Workspace.PositionProperty = defaultConfig.Workspace.PositionProperty
	}
	if cfg.Workspace.StatusProperty == "" {
		cfg.Workspace.StatusProperty = defaultConfig.Workspace.StatusProperty
	}
	if cfg.Sorting.DefaultKey == "" {
		cfg.Sorting.DefaultKey = defaultConfig.Sorting.DefaultKey
	}
	if cfg.Artwork.MinDimension <= 0 {
		cfg.Artwork.MinDimension = defaultConfig.Artwork.MinDimension
	}
	if cfg.Artwork.ThumbnailSize <= 0 {
		cfg.Artwork.ThumbnailSize = defaultConfig.Artwork.ThumbnailSize
	}
	if len(cfg.Providers.Order) == 0 {
		cfg.Providers.Order = defaultConfig.Providers.Order
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultConfig.Server.Port
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultConfig.History.Path
	}
	if cfg.Jobs.LogPath == "" {
		cfg.Jobs.LogPath = defaultConfig.Jobs.LogPath
	}
}

// applyEnvOverrides lets secrets come from the environment instead of the file.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("WORKSPACE_TOKEN"); token != "" {
		cfg.Workspace.Token = token
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	setProviderCredentials(cfg, "spotify", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET")
}

// saveDefaultConfig saves the default configuration to the specified file path
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	slog.Info("Default configuration saved", "path", path)
	return nil
}

package config

// Config holds the application configuration.
type Config struct {
	Workspace Workspace `yaml:"workspace" validate:"required"`
	Providers Providers `yaml:"providers"`
	Sorting   Sorting   `yaml:"sorting"`
	Artwork   Artwork   `yaml:"artwork"`
	History   History   `yaml:"history"`
	Telegram  Telegram  `yaml:"telegram"`
	Logger    Logger    `yaml:"logger"`
	Server    Server    `yaml:"server"`
	Jobs      Jobs      `yaml:"jobs"`
}

// Workspace holds the connection settings for the hosted database that
// owns the album catalog.
type Workspace struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"database_id" validate:"required"`
	APIVersion string `yaml:"api_version"`
	// Client-side request pacing for the remote API.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Property names of the album database. These mirror whatever the
	// user named the columns in the workspace UI.
	TitleProperty    string `yaml:"title_property"`
	ArtistProperty   string `yaml:"artist_property"`
	PositionProperty string `yaml:"position_property"`
	StatusProperty   string `yaml:"status_property"`
}

// Providers holds configuration for the artwork providers.
type Providers struct {
	// Order decides which provider gets asked first.
	Order   []string            `yaml:"order"`
	Entries map[string]Provider `yaml:"entries"`
}

// Provider holds configuration for an individual artwork provider.
type Provider struct {
	Enabled bool    `yaml:"enabled"`
	ID      *string `yaml:"id,omitempty"`
	Secret  *string `yaml:"secret,omitempty"`
}

// Sorting holds the defaults for sort runs.
type Sorting struct {
	DefaultKey string `yaml:"default_key"` // position, title or artist
	Compact    bool   `yaml:"compact"`
}

// Artwork holds the cover decoration settings.
type Artwork struct {
	UpdateExisting bool `yaml:"update_existing"`
	ValidateImages bool `yaml:"validate_images"`
	MinDimension   int  `yaml:"min_dimension"`
	ThumbnailSize  int  `yaml:"thumbnail_size"`
}

// History holds the configuration for the run-history store.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	HTMXDebug bool   `yaml:"htmx_debug"`
}

// Server holds the configuration for the Fiber server
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

type Jobs struct {
	Log      bool          `yaml:"log"`
	LogPath  string        `yaml:"log_path"`
	Webhooks WebhookConfig `yaml:"webhooks"`
}

type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	JobTypes []string `yaml:"job_types"`
	Command  string   `yaml:"command"`
}

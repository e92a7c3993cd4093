package config

var defaultConfig = Config{
	Workspace: Workspace{
		Token:             "", // Integration token, or set WORKSPACE_TOKEN
		DatabaseID:        "<your_album_database_id>",
		APIVersion:        "2022-06-28",
		RequestsPerSecond: 3,
		TitleProperty:     "Album",
		ArtistProperty:    "Artist",
		PositionProperty:  "Top",
		StatusProperty:    "Status",
	},
	Providers: Providers{
		Order: []string{"spotify", "deezer", "coverartarchive"},
		Entries: map[string]Provider{
			"spotify": {
				Enabled: true, // Needs SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET
			},
			"deezer": {
				Enabled: true,
			},
			"coverartarchive": {
				Enabled: false,
			},
		},
	},
	Sorting: Sorting{
		DefaultKey: "position",
		Compact:    false,
	},
	Artwork: Artwork{
		UpdateExisting: false,
		ValidateImages: true,
		MinDimension:   250,
		ThumbnailSize:  160,
	},
	History: History{
		Enabled: true,
		Path:    "./history.db",
	},
	Telegram: Telegram{
		Enabled:      false,
		Token:        "",                                   // Can be obtained with https://t.me/BotFather
		AllowedUsers: []string{"<your_telegram_username>"}, // No @
		BotHandle:    "@<YourTelegramUserBot>",             // With @
	},
	Logger: Logger{
		Enabled:   true,
		Level:     "info",
		Format:    "text",
		HTMXDebug: false,
	},
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Jobs: Jobs{
		Log:     true,
		LogPath: "./logs/jobs",
		Webhooks: WebhookConfig{
			Enabled:  false,
			JobTypes: []string{},
			Command:  "",
		},
	},
}

package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Sub      SubConfig      `mapstructure:"sub"`
	LogLevel string         `mapstructure:"log_level"`
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token    string  `mapstructure:"token"`
	AdminIDs []int64 `mapstructure:"admin_ids"`
}

// DatabaseConfig holds the SQLite database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SubConfig holds the subscription feed endpoint configuration
type SubConfig struct {
	// Listen is the local address the feed server binds to, e.g. ":2096"
	Listen string `mapstructure:"listen"`
	// PublicBase is the public URL prefix of the feed endpoint handed to users
	PublicBase string `mapstructure:"public_base"`
	// SyncSpec is the cron spec for the profile template sync job
	SyncSpec string `mapstructure:"sync_spec"`
}

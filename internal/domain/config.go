package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Download DownloadConfig `mapstructure:"download"`
	Backends BackendsConfig `mapstructure:"backends"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains orchestration policy configuration
type DownloadConfig struct {
	TempDir         string        `mapstructure:"temp_dir"`
	MaxFileSize     int64         `mapstructure:"max_file_size"` // bytes
	MaxDuration     time.Duration `mapstructure:"max_duration"`
	MaxRetries      int           `mapstructure:"max_retries"` // per backend, beyond the first try
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	ConcurrentLimit int           `mapstructure:"concurrent_limit"`
	// FallbackOnPolicyViolation controls whether a size/duration violation
	// on one backend still advances to the next backend in the chain.
	FallbackOnPolicyViolation bool          `mapstructure:"fallback_on_policy_violation"`
	SweepInterval             time.Duration `mapstructure:"sweep_interval"`
	SweepMaxAge               time.Duration `mapstructure:"sweep_max_age"`
}

// BackendsConfig contains extraction backend configuration. The format
// selector is passed through to yt-dlp unchanged.
type BackendsConfig struct {
	YTDLPBinary        string        `mapstructure:"ytdlp_binary"`
	FormatSelector     string        `mapstructure:"format_selector"`
	SocketTimeout      time.Duration `mapstructure:"socket_timeout"`
	CookiesDir         string        `mapstructure:"cookies_dir"`
	FacebookCookieFile string        `mapstructure:"facebook_cookie_file"`
}

// TelegramConfig contains the Telegram front end configuration
type TelegramConfig struct {
	Token           string `mapstructure:"token"`
	RequiredChannel string `mapstructure:"required_channel"` // e.g. "@mychannel"; empty disables gating
	PollTimeout     int    `mapstructure:"poll_timeout"`     // long-poll timeout, seconds
}

// HistoryConfig contains download history persistence configuration
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			TempDir:                   "$HOME/.vidrelay/tmp",
			MaxFileSize:               50 << 20, // Telegram bot upload limit
			MaxDuration:               time.Hour,
			MaxRetries:                2,
			RetryBaseDelay:            time.Second,
			ConcurrentLimit:           3,
			FallbackOnPolicyViolation: false,
			SweepInterval:             time.Hour,
			SweepMaxAge:               24 * time.Hour,
		},
		Backends: BackendsConfig{
			YTDLPBinary:    "yt-dlp",
			FormatSelector: "best[filesize<50M]/best",
			SocketTimeout:  30 * time.Second,
			CookiesDir:     "$HOME/.vidrelay/cookies",
		},
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		History: HistoryConfig{
			DatabasePath: "$HOME/.vidrelay/history.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}

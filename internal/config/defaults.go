package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
)

// Default values
const (
	// Build defaults
	DefaultFormat        = domain.DefaultFormat
	DefaultIncludeDrafts = false

	// Output defaults
	DefaultOutputDir = domain.DefaultOutputDir

	// Concurrency defaults
	DefaultWorkers = domain.DefaultWorkers

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 7 * 24 * time.Hour

	// GitHub defaults
	DefaultGitHubHost = domain.DefaultGitHubHost

	// Server defaults
	DefaultServerHost = "localhost"
	DefaultServerPort = domain.DefaultPort

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folio"
	}
	return filepath.Join(home, ".folio")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Build: BuildSettings{
			Format:        DefaultFormat,
			IncludeDrafts: DefaultIncludeDrafts,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		GitHub: GitHubConfig{
			Host: DefaultGitHubHost,
		},
		Server: ServerConfig{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadFrom loads configuration through v, which may carry flag bindings
// and an explicit config file
func LoadFrom(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// SetConfigName clears a file set with SetConfigFile, so the search
	// paths only apply when no file was given. A given file must exist.
	explicit := v.ConfigFileUsed()
	if explicit == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables (FOLIO_*)
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Build defaults
	v.SetDefault("build.format", DefaultFormat)
	v.SetDefault("build.title", "")
	v.SetDefault("build.intro", "")
	v.SetDefault("build.theme", "")
	v.SetDefault("build.include_drafts", DefaultIncludeDrafts)

	// Output defaults
	v.SetDefault("output.directory", DefaultOutputDir)

	// Concurrency defaults
	v.SetDefault("concurrency.workers", DefaultWorkers)

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	// GitHub defaults
	v.SetDefault("github.repo", "")
	v.SetDefault("github.host", DefaultGitHubHost)

	// Server defaults
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	dir := ConfigDir()
	return os.MkdirAll(dir, 0755)
}

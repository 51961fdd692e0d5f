package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Build       BuildSettings     `mapstructure:"build" yaml:"build"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	GitHub      GitHubConfig      `mapstructure:"github" yaml:"github"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// BuildSettings contains per-book rendering settings
type BuildSettings struct {
	Format        string `mapstructure:"format" yaml:"format"`
	Title         string `mapstructure:"title" yaml:"title"`
	Intro         string `mapstructure:"intro" yaml:"intro"`
	Theme         string `mapstructure:"theme" yaml:"theme"`
	IncludeDrafts bool   `mapstructure:"include_drafts" yaml:"include_drafts"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// CacheConfig contains render cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// GitHubConfig contains repository link settings
type GitHubConfig struct {
	Repo string `mapstructure:"repo" yaml:"repo"`
	Host string `mapstructure:"host" yaml:"host"`
}

// ServerConfig contains dev server settings
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Build.Format) == "" {
		c.Build.Format = DefaultFormat
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = CacheDir()
	}
	if c.GitHub.Host == "" {
		c.GitHub.Host = DefaultGitHubHost
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return domain.NewConfigError("server.port", fmt.Sprintf("%d must be between 0 and 65535", c.Server.Port), nil)
	}
	switch c.Logging.Format {
	case "pretty", "json":
	case "":
		c.Logging.Format = DefaultLogFormat
	default:
		return domain.NewConfigError("logging.format", fmt.Sprintf("%q must be pretty or json", c.Logging.Format), nil)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.GitHub.Repo != "" && strings.Count(strings.Trim(c.GitHub.Repo, "/"), "/") != 1 {
		return domain.NewConfigError("github.repo", fmt.Sprintf("%q is not owner/repo", c.GitHub.Repo), nil)
	}
	return nil
}

// ToBuildConfig maps the configuration onto an unresolved build config
// for sourceDir.
func (c *Config) ToBuildConfig(sourceDir string) domain.BuildConfig {
	return domain.BuildConfig{
		SourceDir:     sourceDir,
		OutputDir:     c.Output.Directory,
		Format:        c.Build.Format,
		Title:         c.Build.Title,
		Intro:         c.Build.Intro,
		RepoRef:       c.GitHub.Repo,
		GitHubHost:    c.GitHub.Host,
		ThemePath:     c.Build.Theme,
		Port:          c.Server.Port,
		IncludeDrafts: c.Build.IncludeDrafts,
		Workers:       c.Concurrency.Workers,
	}
}

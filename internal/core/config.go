package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for the news crawler
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	Crawler  CrawlerConfig  `json:"crawler"`
	Reddit   RedditConfig   `json:"reddit"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `json:"level"`
}

// CrawlerConfig contains crawl pipeline configuration
type CrawlerConfig struct {
	EnableScheduler     bool   `json:"enable_scheduler"`
	SourcesFile         string `json:"sources_file"`
	BlogInterval        int    `json:"blog_interval"`   // seconds
	RedditInterval      int    `json:"reddit_interval"` // seconds
	RedditLimit         int    `json:"reddit_limit"`
	MaxConcurrentCrawls int    `json:"max_concurrent_crawls"`
	HTTPTimeout         int    `json:"http_timeout"` // seconds
	UserAgent           string `json:"user_agent"`
}

// RedditConfig holds the app-only OAuth credentials for the Reddit API.
// They are validated lazily by the Reddit adapter, so a missing secret only
// fails the Reddit sources.
type RedditConfig struct {
	ClientID     string `json:"-"`
	ClientSecret string `json:"-"`
	UserAgent    string `json:"user_agent"`
}

const defaultRedditUserAgent = "MobileDevNews/1.0 (by /u/mobile_dev_news)"

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("NEWS_PORT", 4000),
			Host: getEnvOrDefault("NEWS_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("NEWS_DB_PATH", "./news.db"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("NEWS_LOG_LEVEL", "info"),
		},
		Crawler: CrawlerConfig{
			EnableScheduler:     getEnvAsBool("NEWS_ENABLE_SCHEDULER", true),
			SourcesFile:         getEnvOrDefault("NEWS_SOURCES_FILE", ""),
			BlogInterval:        getEnvAsInt("NEWS_BLOG_INTERVAL", 6*60*60),
			RedditInterval:      getEnvAsInt("NEWS_REDDIT_INTERVAL", 2*60*60),
			RedditLimit:         getEnvAsInt("NEWS_REDDIT_LIMIT", 25),
			MaxConcurrentCrawls: getEnvAsInt("NEWS_MAX_CONCURRENT_CRAWLS", 4),
			HTTPTimeout:         getEnvAsInt("NEWS_HTTP_TIMEOUT", 30),
			UserAgent:           getEnvOrDefault("NEWS_USER_AGENT", "MobileDevNews Crawler/1.0"),
		},
		Reddit: RedditConfig{
			ClientID:     getEnvOrDefault("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnvOrDefault("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnvOrDefault("REDDIT_USER_AGENT", defaultRedditUserAgent),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewConfigurationError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Database.Path == "" {
		return NewConfigurationError("database path is required", nil)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return NewConfigurationError("invalid log level", err)
	}

	if c.Crawler.BlogInterval < 60 || c.Crawler.BlogInterval > 7*24*60*60 {
		return NewConfigurationError("blog interval must be between 60 seconds and 7 days", nil)
	}

	if c.Crawler.RedditInterval < 60 || c.Crawler.RedditInterval > 7*24*60*60 {
		return NewConfigurationError("reddit interval must be between 60 seconds and 7 days", nil)
	}

	if c.Crawler.RedditLimit < 1 || c.Crawler.RedditLimit > 100 {
		return NewConfigurationError("reddit limit must be between 1 and 100", nil)
	}

	if c.Crawler.MaxConcurrentCrawls < 1 || c.Crawler.MaxConcurrentCrawls > 32 {
		return NewConfigurationError("max concurrent crawls must be between 1 and 32", nil)
	}

	if c.Crawler.HTTPTimeout <= 0 {
		return NewConfigurationError("http timeout must be positive", nil)
	}

	return nil
}

// HTTPTimeoutDuration returns the per-request timeout for source fetches
func (c *CrawlerConfig) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// HasCredentials reports whether both OAuth credentials are set
func (r RedditConfig) HasCredentials() bool {
	return strings.TrimSpace(r.ClientID) != "" && strings.TrimSpace(r.ClientSecret) != ""
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

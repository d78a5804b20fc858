package crawler

import (
	"fmt"
	"time"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
)

// Config represents crawler feature configuration
type Config struct {
	EnableScheduler     bool
	SourcesFile         string
	BlogInterval        time.Duration
	RedditInterval      time.Duration
	RedditLimit         int
	MaxConcurrentCrawls int
	HTTPTimeout         time.Duration
	UserAgent           string
	Reddit              core.RedditConfig
}

// NewConfig creates crawler config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		EnableScheduler:     coreConfig.Crawler.EnableScheduler,
		SourcesFile:         coreConfig.Crawler.SourcesFile,
		BlogInterval:        time.Duration(coreConfig.Crawler.BlogInterval) * time.Second,
		RedditInterval:      time.Duration(coreConfig.Crawler.RedditInterval) * time.Second,
		RedditLimit:         coreConfig.Crawler.RedditLimit,
		MaxConcurrentCrawls: coreConfig.Crawler.MaxConcurrentCrawls,
		HTTPTimeout:         coreConfig.Crawler.HTTPTimeoutDuration(),
		UserAgent:           coreConfig.Crawler.UserAgent,
		Reddit:              coreConfig.Reddit,
	}
}

// Validate validates the crawler configuration
func (c *Config) Validate() error {
	if c.BlogInterval < time.Minute || c.RedditInterval < time.Minute {
		return fmt.Errorf("crawl intervals must be at least one minute")
	}

	if c.MaxConcurrentCrawls < 1 {
		return fmt.Errorf("max concurrent crawls must be at least 1")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	return nil
}

// SchedulerConfig returns the scheduler settings derived from c
func (c *Config) SchedulerConfig() *models.SchedulerConfig {
	config := models.DefaultSchedulerConfig()
	config.BlogInterval = c.BlogInterval
	config.RedditInterval = c.RedditInterval
	config.MaxConcurrentCrawls = c.MaxConcurrentCrawls
	return config
}

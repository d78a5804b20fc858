package models

import (
	"time"
)

// SchedulerConfig holds configuration for the crawl scheduler
type SchedulerConfig struct {
	BlogInterval        time.Duration `json:"blog_interval"`
	RedditInterval      time.Duration `json:"reddit_interval"`
	MaxConcurrentCrawls int           `json:"max_concurrent_crawls"`
	RunOnStart          bool          `json:"run_on_start"`
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		BlogInterval:        6 * time.Hour, // blogs publish rarely
		RedditInterval:      2 * time.Hour,
		MaxConcurrentCrawls: 4,
		RunOnStart:          true,
	}
}

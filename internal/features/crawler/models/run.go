package models

import (
	"time"
)

// RunStatus is the outcome of one adapter invocation
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RunLog is one append-only audit record of a crawl run
type RunLog struct {
	ID            int64     `json:"id"`
	WaveID        string    `json:"wave_id"`
	SourceID      *int64    `json:"source_id"`
	SourceKey     string    `json:"source_key"`
	Status        RunStatus `json:"status"`
	ArticlesFound int       `json:"articles_found"`
	Created       int       `json:"created"`
	Skipped       int       `json:"skipped"`
	Errors        int       `json:"errors"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Duration returns how long the run took
func (r RunLog) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// BatchStats are the counters returned by one batch ingestion
type BatchStats struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Add accumulates another batch into s
func (s *BatchStats) Add(other BatchStats) {
	s.Total += other.Total
	s.Created += other.Created
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

// SourceResult is the outcome of crawling and ingesting one source
type SourceResult struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Stats  BatchStats `json:"stats"`
	Status RunStatus  `json:"status"`
	Error  string     `json:"error,omitempty"`
	Busy   bool       `json:"busy,omitempty"`
}

// WaveResult summarises a set of sources crawled together
type WaveResult struct {
	WaveID  string         `json:"wave_id"`
	Results []SourceResult `json:"results"`
	Totals  BatchStats     `json:"totals"`
}

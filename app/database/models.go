package database

import (
	"time"
)

// Article is an ingested news article. URL is the dedup key: ingesting the
// same URL twice returns the already-stored record.
type Article struct {
	ID          string
	Title       string
	Description string
	Content     string
	URL         string
	Source      string
	Author      string
	PublishedAt time.Time
	ImageURL    string
	Category    string
	Keywords    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter holds three independent match dimensions. An empty list imposes no
// constraint on that dimension.
type Filter struct {
	ID         string
	Name       string
	Keywords   []string
	Sources    []string
	Categories []string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Alert is a subscription of one email address to one filter.
// LastDispatchedAt is nil until the first successful send and is only
// advanced after a delivery succeeds.
type Alert struct {
	ID               string
	Email            string
	FilterID         string
	Frequency        string
	IsActive         bool
	LastDispatchedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Dispatch is one append-only audit entry for a delivery attempt.
type Dispatch struct {
	ID           string
	AlertID      string
	Outcome      string
	ErrorMessage string
	DispatchedAt time.Time
	ArticleIDs   []string
	CreatedAt    time.Time
}

package api

import (
	"time"

	"newsalert/app/alert"
	"newsalert/app/database"
	"newsalert/app/ingest"
	"newsalert/app/tasks"
)

type Handler struct {
	articleRepo  database.ArticleRepository
	filterRepo   database.FilterRepository
	alertRepo    database.AlertRepository
	dispatchRepo database.DispatchRepository
	matcher      *alert.Matcher
	dispatcher   *alert.Dispatcher
	processor    *alert.Processor
	sourceCache  *ingest.SourceCache
	newsClient   *ingest.NewsAPIClient
	rssFetcher   *ingest.RSSFetcher
	extractor    *ingest.ContentExtractor
	scheduler    tasks.TaskSchedulerInterface
	lookback     time.Duration
}

type filterRequest struct {
	Name       string   `json:"name" binding:"required"`
	Keywords   []string `json:"keywords"`
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
	IsActive   *bool    `json:"is_active"`
}

type lookbackRequest struct {
	Days *int `json:"days"`
}

type alertRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FilterID  string `json:"filter_id" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

type articleResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Author      string   `json:"author,omitempty"`
	PublishedAt string   `json:"published_at"`
	ImageURL    string   `json:"image_url,omitempty"`
	Category    string   `json:"category,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type filterResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
	IsActive   bool     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

type alertResponse struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FilterID         string  `json:"filter_id"`
	Frequency        string  `json:"frequency"`
	IsActive         bool    `json:"is_active"`
	LastDispatchedAt *string `json:"last_dispatched_at"`
	CreatedAt        string  `json:"created_at"`
}

type dispatchResponse struct {
	ID           string   `json:"id"`
	AlertID      string   `json:"alert_id"`
	Outcome      string   `json:"outcome"`
	ErrorMessage string   `json:"error_message,omitempty"`
	DispatchedAt string   `json:"dispatched_at"`
	ArticleIDs   []string `json:"article_ids"`
}

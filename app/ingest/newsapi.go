package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newsalert/app/database"
)

// ErrUnconfigured is returned when no NewsAPI key is set and sample data is
// not explicitly allowed. The original behavior of silently serving sample
// articles is unsuitable for production, so the fallback is opt-in.
var ErrUnconfigured = errors.New("news client not configured: NEWS_API_KEY is not set")

// NewsAPIClient fetches articles from the NewsAPI v2 endpoints.
type NewsAPIClient struct {
	apiKey      string
	baseURL     string
	userAgent   string
	allowSample bool
	httpClient  *http.Client
}

func NewNewsAPIClient(apiKey, baseURL, userAgent string, allowSample bool) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		userAgent:   userAgent,
		allowSample: allowSample,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RawArticle mirrors the NewsAPI article JSON shape.
type RawArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type newsAPIResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []RawArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

// FetchTopHeadlines fetches from /top-headlines, optionally scoped to a
// category. Without an API key it fails loudly unless sample data is
// allowed.
func (c *NewsAPIClient) FetchTopHeadlines(ctx context.Context, category, country string, pageSize int) ([]RawArticle, error) {
	if c.apiKey == "" {
		if c.allowSample {
			return sampleArticles(time.Now().UTC()), nil
		}
		return nil, ErrUnconfigured
	}

	params := url.Values{}
	params.Set("country", country)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if category != "" {
		params.Set("category", category)
	}

	return c.fetch(ctx, "/top-headlines", params)
}

// FetchEverything fetches from /everything sorted by publish time. An empty
// query falls back to a broad default, matching the upstream API which
// rejects unqualified requests.
func (c *NewsAPIClient) FetchEverything(ctx context.Context, query string, pageSize int) ([]RawArticle, error) {
	if c.apiKey == "" {
		if c.allowSample {
			return sampleArticles(time.Now().UTC()), nil
		}
		return nil, ErrUnconfigured
	}

	if query == "" {
		query = "news"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sortBy", "publishedAt")

	return c.fetch(ctx, "/everything", params)
}

func (c *NewsAPIClient) fetch(ctx context.Context, path string, params url.Values) ([]RawArticle, error) {
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse NewsAPI response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Status == "error" {
		return nil, fmt.Errorf("NewsAPI error: %d %s: %s", resp.StatusCode, parsed.Code, parsed.Message)
	}

	return parsed.Articles, nil
}

// Field length caps applied at ingestion, matching the storage schema
// limits of the original system.
const (
	maxTitleLen       = 500
	maxDescriptionLen = 2000
	maxContentLen     = 10000
	maxSourceLen      = 200
	maxAuthorLen      = 200
	maxURLLen         = 1000
)

// Normalize converts a raw NewsAPI article into the storage model, capping
// field lengths and falling back to now for unparseable publish times.
func (a RawArticle) Normalize(now time.Time) database.Article {
	publishedAt := now
	if a.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			publishedAt = t
		} else if t, err := time.Parse("2006-01-02 15:04:05", a.PublishedAt); err == nil {
			publishedAt = t
		}
	}

	source := a.Source.Name
	if source == "" {
		source = "Unknown"
	}

	return database.Article{
		Title:       clip(a.Title, maxTitleLen),
		Description: clip(a.Description, maxDescriptionLen),
		Content:     clip(a.Content, maxContentLen),
		URL:         clip(a.URL, maxURLLen),
		Source:      clip(source, maxSourceLen),
		Author:      clip(a.Author, maxAuthorLen),
		PublishedAt: publishedAt,
		ImageURL:    clip(a.URLToImage, maxURLLen),
	}
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

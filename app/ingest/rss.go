package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsalert/app/database"
)

// RSSFetcher ingests articles from RSS/Atom feeds.
type RSSFetcher struct {
	userAgent  string
	httpClient *http.Client
	parser     *gofeed.Parser
}

func NewRSSFetcher(userAgent string) *RSSFetcher {
	return &RSSFetcher{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads and parses one feed, normalizing items into the storage
// model. Items without a link are dropped; without a publish time they get
// now.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string, now time.Time) ([]database.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	feed, err := f.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]database.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		articles = append(articles, f.normalizeItem(feed, item, now))
	}

	return articles, nil
}

func (f *RSSFetcher) normalizeItem(feed *gofeed.Feed, item *gofeed.Item, now time.Time) database.Article {
	article := database.Article{
		Title:       clip(item.Title, maxTitleLen),
		Description: clip(item.Description, maxDescriptionLen),
		Content:     clip(item.Content, maxContentLen),
		URL:         clip(item.Link, maxURLLen),
		Source:      clip(feed.Title, maxSourceLen),
		PublishedAt: now,
		Keywords:    item.Categories,
	}

	if item.PublishedParsed != nil {
		article.PublishedAt = *item.PublishedParsed
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		article.Author = clip(item.Authors[0].Name, maxAuthorLen)
	}

	if len(item.Categories) > 0 {
		article.Category = item.Categories[0]
	}

	if item.Image != nil {
		article.ImageURL = clip(item.Image.URL, maxURLLen)
	}

	return article
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsalert/app/database"
	"newsalert/app/ingest"
)

var _ TaskInterface = (*FetchNewsTask)(nil)

// FetchNewsTask pulls articles from a single configured source and stores
// the ones not seen before. Content extraction, when enabled for the source,
// runs only for articles stored without body text.
type FetchNewsTask struct {
	Task
	source      *ingest.SourceConfig
	newsClient  *ingest.NewsAPIClient
	rssFetcher  *ingest.RSSFetcher
	extractor   *ingest.ContentExtractor
	articleRepo database.ArticleRepository
}

func NewFetchNewsTask(source *ingest.SourceConfig, newsClient *ingest.NewsAPIClient,
	rssFetcher *ingest.RSSFetcher, extractor *ingest.ContentExtractor,
	articleRepo database.ArticleRepository) *FetchNewsTask {
	return &FetchNewsTask{
		Task:        NewTask(TaskTypeFetchNews, source.Name),
		source:      source,
		newsClient:  newsClient,
		rssFetcher:  rssFetcher,
		extractor:   extractor,
		articleRepo: articleRepo,
	}
}

func (t *FetchNewsTask) Execute(ctx context.Context) error {
	now := time.Now().UTC()

	articles, err := t.fetchArticles(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch source %q: %w", t.source.Name, err)
	}

	stored := 0
	for _, article := range articles {
		if article.URL == "" {
			continue
		}

		saved, err := t.articleRepo.UpsertByURL(ctx, article)
		if err != nil {
			slog.Warn("Failed to store article", "source", t.source.Name, "url", article.URL, "error", err)
			continue
		}
		stored++

		if t.source.Settings.ExtractContent && saved.Content == "" {
			t.extractContent(ctx, saved)
		}
	}

	slog.Info("Source fetch completed", "source", t.source.Name, "fetched", len(articles), "stored", stored, "duration", t.GetDuration().String())

	return nil
}

func (t *FetchNewsTask) fetchArticles(ctx context.Context, now time.Time) ([]database.Article, error) {
	if t.source.Type == ingest.SourceTypeRSS {
		return t.rssFetcher.Fetch(ctx, t.source.URL, now)
	}

	var raw []ingest.RawArticle
	var err error

	if t.source.Query != "" {
		raw, err = t.newsClient.FetchEverything(ctx, t.source.Query, t.source.PageSize)
	} else {
		raw, err = t.newsClient.FetchTopHeadlines(ctx, t.source.Category, t.source.Country, t.source.PageSize)
	}
	if err != nil {
		return nil, err
	}

	articles := make([]database.Article, 0, len(raw))
	for _, r := range raw {
		article := r.Normalize(now)
		if t.source.Category != "" && article.Category == "" {
			article.Category = t.source.Category
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func (t *FetchNewsTask) extractContent(ctx context.Context, article *database.Article) {
	content, err := t.extractor.Run(ctx, article.URL)
	if err != nil {
		slog.Debug("Content extraction failed", "url", article.URL, "error", err)
		return
	}
	if content == "" {
		return
	}

	if err := t.articleRepo.UpdateContent(ctx, article.ID, content); err != nil {
		slog.Warn("Failed to store extracted content", "article_id", article.ID, "error", err)
	}
}

package ingest

import "time"

// sampleArticles returns built-in placeholder articles for development
// without NewsAPI credentials. Only reachable when sample data is
// explicitly allowed.
func sampleArticles(now time.Time) []RawArticle {
	first := RawArticle{
		Author:      "Sample Author",
		Title:       "Sample News Article 1",
		Description: "This is a sample news article description.",
		Content:     "This is the full content of the sample news article.",
		URL:         "https://example.com/news/1",
		PublishedAt: now.Format(time.RFC3339),
	}
	first.Source.Name = "Sample Source"

	second := RawArticle{
		Author:      "Another Author",
		Title:       "Sample News Article 2",
		Description: "Another sample news article description.",
		Content:     "Another sample news article content.",
		URL:         "https://example.com/news/2",
		PublishedAt: now.Add(-time.Hour).Format(time.RFC3339),
	}
	second.Source.Name = "Another Source"

	return []RawArticle{first, second}
}

package alert

import (
	"strings"

	"newsalert/app/database"
)

// Matcher decides whether an article satisfies a filter. Pure: no side
// effects, deterministic in its two inputs.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Matches combines the three filter dimensions with logical AND. An empty
// dimension imposes no constraint; a filter with no constraints at all
// matches every article. Evaluation short-circuits on the first failing
// dimension.
func (m *Matcher) Matches(article database.Article, filter database.Filter) bool {
	if !m.matchKeywords(article, filter.Keywords) {
		return false
	}
	if !m.matchSources(article, filter.Sources) {
		return false
	}
	return m.matchCategories(article, filter.Categories)
}

// matchKeywords matches when ANY keyword occurs case-insensitively in the
// concatenated title, description, and content.
func (m *Matcher) matchKeywords(article database.Article, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	text := strings.ToLower(article.Title + " " + article.Description + " " + article.Content)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

// matchSources matches when ANY configured source is a case-insensitive
// substring of the article's source name.
func (m *Matcher) matchSources(article database.Article, sources []string) bool {
	if len(sources) == 0 {
		return true
	}

	articleSource := strings.ToLower(article.Source)
	for _, source := range sources {
		if source == "" {
			continue
		}
		if strings.Contains(articleSource, strings.ToLower(source)) {
			return true
		}
	}

	return false
}

// matchCategories requires the article category to equal ANY configured
// category, ignoring case. An article without a category is rejected when
// categories are configured.
func (m *Matcher) matchCategories(article database.Article, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	if article.Category == "" {
		return false
	}

	for _, category := range categories {
		if strings.EqualFold(article.Category, category) {
			return true
		}
	}

	return false
}

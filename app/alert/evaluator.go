package alert

import (
	"context"
	"fmt"
	"time"

	"newsalert/app/database"
)

// Evaluator runs the per-alert pipeline: cadence check, candidate query,
// filter matching, delivery cap.
type Evaluator struct {
	articleRepo database.ArticleRepository
	filterRepo  database.FilterRepository
	matcher     *Matcher
}

func NewEvaluator(articleRepo database.ArticleRepository, filterRepo database.FilterRepository) *Evaluator {
	return &Evaluator{
		articleRepo: articleRepo,
		filterRepo:  filterRepo,
		matcher:     NewMatcher(),
	}
}

// Evaluate returns the matched articles for one alert, capped at DispatchCap
// and ordered most-recent-first. When the alert is not due, it returns a
// cadence-skip result without touching the article store. The returned
// filter is non-nil only when matching actually ran.
func (e *Evaluator) Evaluate(ctx context.Context, a database.Alert, lookback time.Duration, now time.Time) (*MatchResult, *database.Filter, error) {
	frequency := Frequency(a.Frequency)
	if !frequency.Valid() {
		return nil, nil, &ConfigurationError{
			AlertID: a.ID,
			Reason:  fmt.Sprintf("unrecognized frequency %q", a.Frequency),
		}
	}

	if !IsDue(frequency, a.LastDispatchedAt, now) {
		return &MatchResult{Status: StatusSkippedCadence}, nil, nil
	}

	filter, err := e.filterRepo.GetFilter(ctx, a.FilterID)
	if err != nil {
		return nil, nil, &StoreError{Op: "get_filter", Err: err}
	}
	if filter == nil {
		return nil, nil, &ConfigurationError{
			AlertID: a.ID,
			Reason:  fmt.Sprintf("filter %s not found", a.FilterID),
		}
	}

	candidates, err := e.articleRepo.GetPublishedSince(ctx, now.Add(-lookback))
	if err != nil {
		return nil, nil, &StoreError{Op: "get_articles", Err: err}
	}

	// Candidates arrive in descending publish order, so taking the first
	// DispatchCap matches preserves most-recent-first.
	var matched []database.Article
	for _, candidate := range candidates {
		if e.matcher.Matches(candidate, *filter) {
			matched = append(matched, candidate)
			if len(matched) == DispatchCap {
				break
			}
		}
	}

	result := &MatchResult{
		Candidates: len(candidates),
		Articles:   matched,
	}
	if len(matched) == 0 {
		result.Status = StatusSkippedNoMatch
	} else {
		result.Status = StatusSent
	}

	return result, filter, nil
}

package database

import (
	"context"
	"time"
)

type ArticleRepository interface {
	// UpsertByURL stores the article unless one with the same URL already
	// exists, in which case the existing record is returned unchanged.
	UpsertByURL(ctx context.Context, article Article) (*Article, error)
	GetPublishedSince(ctx context.Context, since time.Time) ([]Article, error)
	ListArticles(ctx context.Context, source, category, keyword string, limit int) ([]Article, error)
	UpdateContent(ctx context.Context, articleID, content string) error
	GetArticleCount(ctx context.Context) (int, error)
}

type FilterRepository interface {
	CreateFilter(ctx context.Context, filter Filter) (*Filter, error)
	GetFilter(ctx context.Context, id string) (*Filter, error)
	ListFilters(ctx context.Context) ([]Filter, error)
	UpdateFilter(ctx context.Context, filter Filter) (*Filter, error)
	DeleteFilter(ctx context.Context, id string) error
}

type AlertRepository interface {
	CreateAlert(ctx context.Context, alert Alert) (*Alert, error)
	GetAlert(ctx context.Context, id string) (*Alert, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
	GetActiveAlerts(ctx context.Context) ([]Alert, error)
	UpdateAlert(ctx context.Context, alert Alert) (*Alert, error)
	DeleteAlert(ctx context.Context, id string) error

	// UpdateLastDispatched sets last_dispatched_at only when the stored
	// value still matches observed. Returns false when another run claimed
	// the dispatch in between. Passing the prior value as dispatchedAt with
	// the claim time as observed releases a claim.
	UpdateLastDispatched(ctx context.Context, alertID string, dispatchedAt *time.Time, observed *time.Time) (bool, error)
}

type DispatchRepository interface {
	// RecordDispatch appends one audit entry; entries are never updated.
	RecordDispatch(ctx context.Context, dispatch Dispatch) error
	ListDispatches(ctx context.Context, alertID string, limit int) ([]Dispatch, error)
}

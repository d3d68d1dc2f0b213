package alert

import (
	"context"
	"time"

	"newsalert/app/database"
)

// MockArticleRepository implements a simple mock for testing
type MockArticleRepository struct {
	articles   []database.Article
	err        error
	sinceCalls int
	lastSince  time.Time
}

var _ database.ArticleRepository = (*MockArticleRepository)(nil)

func (m *MockArticleRepository) UpsertByURL(ctx context.Context, article database.Article) (*database.Article, error) {
	return &article, nil
}

func (m *MockArticleRepository) GetPublishedSince(ctx context.Context, since time.Time) ([]database.Article, error) {
	m.sinceCalls++
	m.lastSince = since
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

func (m *MockArticleRepository) ListArticles(ctx context.Context, source, category, keyword string, limit int) ([]database.Article, error) {
	return m.articles, nil
}

func (m *MockArticleRepository) UpdateContent(ctx context.Context, articleID, content string) error {
	return nil
}

func (m *MockArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	return len(m.articles), nil
}

// MockFilterRepository implements a simple mock for testing
type MockFilterRepository struct {
	filters map[string]*database.Filter
	err     error
}

var _ database.FilterRepository = (*MockFilterRepository)(nil)

func (m *MockFilterRepository) CreateFilter(ctx context.Context, filter database.Filter) (*database.Filter, error) {
	return &filter, nil
}

func (m *MockFilterRepository) GetFilter(ctx context.Context, id string) (*database.Filter, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filters[id], nil
}

func (m *MockFilterRepository) ListFilters(ctx context.Context) ([]database.Filter, error) {
	return nil, nil
}

func (m *MockFilterRepository) UpdateFilter(ctx context.Context, filter database.Filter) (*database.Filter, error) {
	return &filter, nil
}

func (m *MockFilterRepository) DeleteFilter(ctx context.Context, id string) error {
	return nil
}

// MockAlertRepository implements a simple mock for testing
type MockAlertRepository struct {
	alerts           []database.Alert
	err              error
	updateCalls      int
	lastDispatchedAt *time.Time
	lastObserved     *time.Time
	claimResult      bool
	claimErr         error
}

var _ database.AlertRepository = (*MockAlertRepository)(nil)

func (m *MockAlertRepository) CreateAlert(ctx context.Context, a database.Alert) (*database.Alert, error) {
	return &a, nil
}

func (m *MockAlertRepository) GetAlert(ctx context.Context, id string) (*database.Alert, error) {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			return &m.alerts[i], nil
		}
	}
	return nil, nil
}

func (m *MockAlertRepository) GetActiveAlerts(ctx context.Context) ([]database.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *MockAlertRepository) UpdateAlert(ctx context.Context, a database.Alert) (*database.Alert, error) {
	return &a, nil
}

func (m *MockAlertRepository) DeleteAlert(ctx context.Context, id string) error {
	return nil
}

func (m *MockAlertRepository) ListAlerts(ctx context.Context) ([]database.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *MockAlertRepository) UpdateLastDispatched(ctx context.Context, alertID string, dispatchedAt *time.Time, observed *time.Time) (bool, error) {
	m.updateCalls++
	m.lastDispatchedAt = dispatchedAt
	m.lastObserved = observed
	if m.claimErr != nil {
		return false, m.claimErr
	}
	return m.claimResult, nil
}

// MockDispatchRepository implements a simple mock for testing
type MockDispatchRepository struct {
	records []database.Dispatch
	err     error
}

var _ database.DispatchRepository = (*MockDispatchRepository)(nil)

func (m *MockDispatchRepository) RecordDispatch(ctx context.Context, dispatch database.Dispatch) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, dispatch)
	return nil
}

func (m *MockDispatchRepository) ListDispatches(ctx context.Context, alertID string, limit int) ([]database.Dispatch, error) {
	return m.records, nil
}

// MockSender implements a simple mock for testing
type MockSender struct {
	sendErr   error
	sendCalls int
	lastDest  string
	lastCount int
}

var _ Sender = (*MockSender)(nil)

func (m *MockSender) Send(ctx context.Context, destination string, articles []database.Article, filter database.Filter) error {
	m.sendCalls++
	m.lastDest = destination
	m.lastCount = len(articles)
	return m.sendErr
}

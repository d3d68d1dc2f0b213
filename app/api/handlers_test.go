package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"newsalert/app/database"
)

// MockAlertRepository implements a simple mock for testing
type MockAlertRepository struct {
	alerts []database.Alert
	err    error
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

func (m *MockAlertRepository) ListAlerts(ctx context.Context) ([]database.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *MockAlertRepository) GetActiveAlerts(ctx context.Context) ([]database.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	active := make([]database.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (m *MockAlertRepository) UpdateAlert(ctx context.Context, a database.Alert) (*database.Alert, error) {
	return &a, nil
}

func (m *MockAlertRepository) DeleteAlert(ctx context.Context, id string) error {
	return nil
}

func (m *MockAlertRepository) UpdateLastDispatched(ctx context.Context, alertID string, dispatchedAt *time.Time, observed *time.Time) (bool, error) {
	return true, nil
}

func TestAPIListAlertsIncludesInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	alertRepo := &MockAlertRepository{
		alerts: []database.Alert{
			{ID: "a1", Email: "one@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
			{ID: "a2", Email: "two@example.com", FilterID: "f1", Frequency: "daily", IsActive: false},
		},
	}
	h := &Handler{alertRepo: alertRepo}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/alerts", nil)

	h.APIListAlerts(c)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Alerts []alertResponse `json:"alerts"`
		Total  int             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected valid JSON response, got error: %v", err)
	}

	// Deactivated alerts stay visible to management clients; only the
	// processing run filters on is_active.
	if body.Total != 2 {
		t.Fatalf("Expected 2 alerts, got %d", body.Total)
	}

	foundInactive := false
	for _, a := range body.Alerts {
		if a.ID == "a2" && !a.IsActive {
			foundInactive = true
		}
	}
	if !foundInactive {
		t.Error("Expected deactivated alert a2 in the listing")
	}
}

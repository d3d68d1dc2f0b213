package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsalert/app/database"
)

func newTestProcessor(alertRepo *MockAlertRepository, articleRepo *MockArticleRepository,
	filterRepo *MockFilterRepository, dispatchRepo *MockDispatchRepository, sender *MockSender) *Processor {
	evaluator := NewEvaluator(articleRepo, filterRepo)
	dispatcher := NewDispatcher(alertRepo, dispatchRepo, sender)
	return NewProcessor(alertRepo, evaluator, dispatcher, 2)
}

func TestRunProcessesAllAlerts(t *testing.T) {
	now := time.Now().UTC()

	alertRepo := &MockAlertRepository{
		claimResult: true,
		alerts: []database.Alert{
			{ID: "a1", Email: "one@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
			{ID: "a2", Email: "two@example.com", FilterID: "f2", Frequency: "immediate", IsActive: true},
			{ID: "a3", Email: "three@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
		},
	}
	articleRepo := &MockArticleRepository{articles: testArticles(now, 5)}
	filterRepo := &MockFilterRepository{
		filters: map[string]*database.Filter{
			"f1": {ID: "f1", Keywords: []string{"go"}},
			"f2": {ID: "f2", Keywords: []string{"nothing matches this"}},
		},
	}
	dispatchRepo := &MockDispatchRepository{}
	sender := &MockSender{}

	processor := newTestProcessor(alertRepo, articleRepo, filterRepo, dispatchRepo, sender)

	summary, err := processor.Run(context.Background(), 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Sent != 2 {
		t.Errorf("Expected 2 sent, got %d", summary.Sent)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", summary.Skipped)
	}
	if summary.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", summary.Failed)
	}
	if len(summary.Details) != 3 {
		t.Errorf("Expected 3 detail entries, got %d", len(summary.Details))
	}
	if sender.sendCalls != 2 {
		t.Errorf("Expected 2 sends, got %d", sender.sendCalls)
	}
}

func TestRunIsolatesMisconfiguredAlert(t *testing.T) {
	now := time.Now().UTC()

	alertRepo := &MockAlertRepository{
		claimResult: true,
		alerts: []database.Alert{
			{ID: "a1", Email: "one@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
			{ID: "a2", Email: "two@example.com", FilterID: "missing", Frequency: "immediate", IsActive: true},
			{ID: "a3", Email: "three@example.com", FilterID: "f1", Frequency: "fortnightly", IsActive: true},
		},
	}
	articleRepo := &MockArticleRepository{articles: testArticles(now, 3)}
	filterRepo := &MockFilterRepository{
		filters: map[string]*database.Filter{"f1": {ID: "f1", Keywords: []string{"go"}}},
	}
	dispatchRepo := &MockDispatchRepository{}
	sender := &MockSender{}

	processor := newTestProcessor(alertRepo, articleRepo, filterRepo, dispatchRepo, sender)

	summary, err := processor.Run(context.Background(), 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Sent != 1 {
		t.Errorf("Expected 1 sent, got %d", summary.Sent)
	}
	if summary.Failed != 2 {
		t.Errorf("Expected 2 failed, got %d", summary.Failed)
	}

	for _, detail := range summary.Details {
		if detail.AlertID == "a2" && detail.Reason == "" {
			t.Error("Expected a reason for the missing-filter alert")
		}
		if detail.AlertID == "a3" && detail.Status != StatusFailed {
			t.Errorf("Expected unknown frequency to fail, got %s", detail.Status)
		}
	}
}

func TestRunDeliveryFailureCountsAsFailed(t *testing.T) {
	now := time.Now().UTC()

	alertRepo := &MockAlertRepository{
		claimResult: true,
		alerts: []database.Alert{
			{ID: "a1", Email: "one@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
		},
	}
	articleRepo := &MockArticleRepository{articles: testArticles(now, 1)}
	filterRepo := &MockFilterRepository{
		filters: map[string]*database.Filter{"f1": {ID: "f1"}},
	}
	dispatchRepo := &MockDispatchRepository{}
	sender := &MockSender{sendErr: errors.New("provider down")}

	processor := newTestProcessor(alertRepo, articleRepo, filterRepo, dispatchRepo, sender)

	summary, err := processor.Run(context.Background(), 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", summary.Failed)
	}
	if len(dispatchRepo.records) != 1 || dispatchRepo.records[0].Outcome != OutcomeFailed {
		t.Error("Expected failed dispatch to be recorded")
	}
}

func TestRunStoreOutageFailsRun(t *testing.T) {
	alertRepo := &MockAlertRepository{err: errors.New("connection refused")}
	processor := newTestProcessor(alertRepo, &MockArticleRepository{}, &MockFilterRepository{}, &MockDispatchRepository{}, &MockSender{})

	_, err := processor.Run(context.Background(), 24*time.Hour, time.Now().UTC())
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
}

func TestRunMidRunStoreOutageFailsRun(t *testing.T) {
	now := time.Now().UTC()

	alertRepo := &MockAlertRepository{
		claimResult: true,
		alerts: []database.Alert{
			{ID: "a1", Email: "one@example.com", FilterID: "f1", Frequency: "immediate", IsActive: true},
		},
	}
	// The article query fails after the alert list loaded: the whole run
	// must fail rather than tallying the alert as failed.
	articleRepo := &MockArticleRepository{err: errors.New("connection refused")}
	filterRepo := &MockFilterRepository{
		filters: map[string]*database.Filter{"f1": {ID: "f1", Keywords: []string{"go"}}},
	}
	sender := &MockSender{}

	processor := newTestProcessor(alertRepo, articleRepo, filterRepo, &MockDispatchRepository{}, sender)

	summary, err := processor.Run(context.Background(), 24*time.Hour, now)
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
	if summary != nil {
		t.Errorf("Expected no summary on store outage, got %+v", summary)
	}
	if sender.sendCalls != 0 {
		t.Errorf("Expected no sends, got %d", sender.sendCalls)
	}
}

func TestRunEmptyAlertList(t *testing.T) {
	processor := newTestProcessor(&MockAlertRepository{}, &MockArticleRepository{}, &MockFilterRepository{}, &MockDispatchRepository{}, &MockSender{})

	summary, err := processor.Run(context.Background(), 24*time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Sent != 0 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
}

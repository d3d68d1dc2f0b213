package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsalert/app/database"
)

func testArticle() database.Article {
	return database.Article{
		ID:          "article-1",
		Title:       "Go 1.24 Released",
		Description: "The latest Go release",
		URL:         "https://example.com/go",
		Source:      "Go Blog",
		PublishedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestSendUnconfigured(t *testing.T) {
	sender := NewEmailSender("", "from@example.com", "Alerts", 2)

	err := sender.Send(context.Background(), "to@example.com", []database.Article{testArticle()}, database.Filter{Name: "Tech"})
	if !errors.Is(err, ErrUnconfigured) {
		t.Errorf("Expected ErrUnconfigured, got %v", err)
	}
}

func TestSend(t *testing.T) {
	var captured sgMailPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected Bearer auth, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Expected JSON content type, got %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewEmailSender("test-key", "from@example.com", "Alerts", 10)
	sender.endpoint = server.URL

	err := sender.Send(context.Background(), "to@example.com", []database.Article{testArticle()}, database.Filter{Name: "Tech"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if captured.Subject != "News Alert: Tech" {
		t.Errorf("Expected subject with filter name, got %q", captured.Subject)
	}
	if len(captured.Personalizations) != 1 || len(captured.Personalizations[0].To) != 1 {
		t.Fatal("Expected one recipient")
	}
	if captured.Personalizations[0].To[0].Email != "to@example.com" {
		t.Errorf("Expected recipient to@example.com, got %s", captured.Personalizations[0].To[0].Email)
	}
	if captured.From.Email != "from@example.com" {
		t.Errorf("Expected from from@example.com, got %s", captured.From.Email)
	}

	if len(captured.Content) != 2 {
		t.Fatalf("Expected plain and HTML content parts, got %d", len(captured.Content))
	}
	if captured.Content[0].Type != "text/plain" || captured.Content[1].Type != "text/html" {
		t.Errorf("Expected text/plain then text/html, got %s and %s", captured.Content[0].Type, captured.Content[1].Type)
	}
	if !strings.Contains(captured.Content[1].Value, "Go 1.24 Released") {
		t.Error("Expected article title in HTML body")
	}
}

func TestSendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": [{"message": "bad key"}]}`))
	}))
	defer server.Close()

	sender := NewEmailSender("bad-key", "from@example.com", "Alerts", 10)
	sender.endpoint = server.URL

	err := sender.Send(context.Background(), "to@example.com", []database.Article{testArticle()}, database.Filter{Name: "Tech"})
	if err == nil {
		t.Fatal("Expected error for provider rejection")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestHTMLBodyEscapes(t *testing.T) {
	article := testArticle()
	article.Title = `<script>alert("x")</script>`

	body := htmlBody([]database.Article{article}, database.Filter{Name: "Tech & Science"})

	if strings.Contains(body, "<script>") {
		t.Error("Expected HTML in article fields to be escaped")
	}
	if !strings.Contains(body, "Tech &amp; Science") {
		t.Error("Expected filter name to be escaped")
	}
}

func TestPlainBodyTruncatesDescription(t *testing.T) {
	article := testArticle()
	article.Description = strings.Repeat("x", 500)

	body := plainBody([]database.Article{article}, database.Filter{Name: "Tech"})

	if strings.Contains(body, strings.Repeat("x", 201)) {
		t.Error("Expected description truncated to 200 characters")
	}
	if !strings.Contains(body, strings.Repeat("x", 200)+"...") {
		t.Error("Expected ellipsis after truncated description")
	}
}

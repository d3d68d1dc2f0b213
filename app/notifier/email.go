package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"newsalert/app/database"
)

const sendgridMailEndpoint = "https://api.sendgrid.com/v3/mail/send"

// ErrUnconfigured is returned when no SendGrid API key is set. Delivery is
// never silently skipped; an unconfigured sender is a loud failure.
var ErrUnconfigured = errors.New("email sender not configured: SENDGRID_API_KEY is not set")

// EmailSender delivers alert digests via the SendGrid v3 mail API. Outbound
// requests are rate limited so a large batch cannot trip provider limits.
type EmailSender struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewEmailSender(apiKey, fromEmail, fromName string, ratePerSec int) *EmailSender {
	if ratePerSec < 1 {
		ratePerSec = 1
	}
	return &EmailSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		endpoint:  sendgridMailEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

func (s *EmailSender) Send(ctx context.Context, destination string, articles []database.Article, filter database.Filter) error {
	if s.apiKey == "" {
		return ErrUnconfigured
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait canceled: %w", err)
	}

	subject := "News Alert: " + filter.Name

	payload := sgMailPayload{
		Personalizations: []sgPersonalization{{
			To: []sgAddress{{Email: destination}},
		}},
		From:    sgAddress{Email: s.fromEmail, Name: s.fromName},
		Subject: subject,
		Content: []sgContent{
			{Type: "text/plain", Value: plainBody(articles, filter)},
			{Type: "text/html", Value: htmlBody(articles, filter)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SendGrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create SendGrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func htmlBody(articles []database.Article, filter database.Filter) string {
	var b strings.Builder

	b.WriteString("<html>\n<body>\n")
	fmt.Fprintf(&b, "<h2>News Alert: %s</h2>\n", html.EscapeString(filter.Name))
	fmt.Fprintf(&b, "<p>You have %d new article(s) matching your criteria.</p>\n<hr>\n", len(articles))

	for _, article := range articles {
		b.WriteString(`<div style="margin-bottom: 20px; padding: 10px; border: 1px solid #ddd;">` + "\n")
		fmt.Fprintf(&b, `<h3><a href="%s" target="_blank">%s</a></h3>`+"\n", article.URL, html.EscapeString(article.Title))
		fmt.Fprintf(&b, "<p><strong>Source:</strong> %s</p>\n", html.EscapeString(article.Source))
		fmt.Fprintf(&b, "<p><strong>Published:</strong> %s</p>\n", article.PublishedAt.Format("2006-01-02 15:04"))
		if article.Description != "" {
			fmt.Fprintf(&b, "<p>%s...</p>\n", html.EscapeString(truncate(article.Description, 200)))
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("<hr>\n<p><small>This is an automated news alert. To manage your alerts, please visit the news alert system.</small></p>\n")
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

func plainBody(articles []database.Article, filter database.Filter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "News Alert: %s\n\n", filter.Name)
	fmt.Fprintf(&b, "You have %d new article(s) matching your criteria.\n\n", len(articles))

	for _, article := range articles {
		fmt.Fprintf(&b, "%s\n%s\n", article.Title, article.URL)
		fmt.Fprintf(&b, "Source: %s | Published: %s\n", article.Source, article.PublishedAt.Format("2006-01-02 15:04"))
		if article.Description != "" {
			fmt.Fprintf(&b, "%s...\n", truncate(article.Description, 200))
		}
		b.WriteString("\n")
	}

	b.WriteString("This is an automated news alert. To manage your alerts, please visit the news alert system.\n")

	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// SendGrid v3 Mail Send API payload types.
type sgMailPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

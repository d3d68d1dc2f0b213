package alert

import (
	"context"

	"newsalert/app/database"
)

// Frequency is the minimum interval policy controlling how often an alert
// may fire.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyImmediate, FrequencyHourly, FrequencyDaily:
		return true
	}
	return false
}

// DispatchCap is the maximum number of articles included in one notification.
const DispatchCap = 10

type Status string

const (
	StatusSent           Status = "sent"
	StatusSkippedCadence Status = "skipped_cadence"
	StatusSkippedNoMatch Status = "skipped_no_match"
	StatusFailed         Status = "failed"
)

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// MatchResult is the outcome of evaluating a single alert against the
// candidate window.
type MatchResult struct {
	Status     Status
	Candidates int
	Articles   []database.Article
}

// AlertResult is one per-alert detail line of a batch run.
type AlertResult struct {
	AlertID string `json:"alert_id"`
	Email   string `json:"email"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Count   int    `json:"count"`
}

// RunSummary aggregates one batch run. Skipped covers both cadence skips and
// empty match sets.
type RunSummary struct {
	Sent    int           `json:"sent"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Details []AlertResult `json:"details"`
}

// Sender delivers one notification. Implementations must honor the context
// deadline; a timeout is a delivery failure, not a hang.
type Sender interface {
	Send(ctx context.Context, destination string, articles []database.Article, filter database.Filter) error
}

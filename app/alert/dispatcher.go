package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsalert/app/database"
)

// Dispatcher performs the side-effecting half of the pipeline: send the
// notification, advance the alert's cadence state, append the audit record.
type Dispatcher struct {
	alertRepo    database.AlertRepository
	dispatchRepo database.DispatchRepository
	sender       Sender
	sendTimeout  time.Duration
}

func NewDispatcher(alertRepo database.AlertRepository, dispatchRepo database.DispatchRepository, sender Sender) *Dispatcher {
	return &Dispatcher{
		alertRepo:    alertRepo,
		dispatchRepo: dispatchRepo,
		sender:       sender,
		sendTimeout:  30 * time.Second,
	}
}

// DispatchOutcome reports how a dispatch went. A delivery failure is a
// reported outcome, not an error: the alert's last_dispatched_at is left
// untouched so the cadence gate keeps it due for retry next cycle.
type DispatchOutcome struct {
	Status Status
	Reason string
}

// Dispatch sends matched articles to the alert's destination. The caller
// guarantees matched is non-empty. The alert is claimed first with a
// conditional update on last_dispatched_at guarded by the value observed at
// evaluation time; a lost claim means another run already dispatched within
// this cadence window, so no email is sent at all. On delivery failure the
// claim is released so the alert stays due, and a "failed" record is
// appended. An audit write failing after a successful send is logged and
// accepted: the email went out and must not be sent twice.
func (d *Dispatcher) Dispatch(ctx context.Context, a database.Alert, filter database.Filter, matched []database.Article, now time.Time) DispatchOutcome {
	claimed, err := d.alertRepo.UpdateLastDispatched(ctx, a.ID, &now, a.LastDispatchedAt)
	if err != nil {
		slog.Error("Failed to claim alert for dispatch", "alert_id", a.ID, "error", err)
		return DispatchOutcome{Status: StatusFailed, Reason: (&StoreError{Op: "claim_dispatch", Err: err}).Error()}
	}
	if !claimed {
		slog.Warn("Alert already dispatched by a concurrent run", "alert_id", a.ID, "email", a.Email)
		return DispatchOutcome{Status: StatusSkippedCadence, Reason: "claimed by concurrent run"}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	sendErr := d.sender.Send(sendCtx, a.Email, matched, filter)

	articleIDs := make([]string, len(matched))
	for i, article := range matched {
		articleIDs[i] = article.ID
	}

	record := database.Dispatch{
		ID:           uuid.NewString(),
		AlertID:      a.ID,
		DispatchedAt: now,
		ArticleIDs:   articleIDs,
	}

	if sendErr != nil {
		deliveryErr := &DeliveryError{Err: sendErr}
		slog.Error("Alert delivery failed", "alert_id", a.ID, "email", a.Email, "error", sendErr)

		// Release the claim so the cadence gate keeps the alert due.
		if _, err := d.alertRepo.UpdateLastDispatched(ctx, a.ID, a.LastDispatchedAt, &now); err != nil {
			slog.Error("Failed to release dispatch claim", "alert_id", a.ID, "error", err)
		}

		record.Outcome = OutcomeFailed
		record.ErrorMessage = sendErr.Error()
		if err := d.dispatchRepo.RecordDispatch(ctx, record); err != nil {
			slog.Error("Failed to record failed dispatch", "alert_id", a.ID, "error", err)
		}

		return DispatchOutcome{Status: StatusFailed, Reason: deliveryErr.Error()}
	}

	record.Outcome = OutcomeSent
	if err := d.dispatchRepo.RecordDispatch(ctx, record); err != nil {
		slog.Error("Failed to record sent dispatch; delivery already happened, not retrying",
			"alert_id", a.ID, "error", err)
	}

	slog.Info("Alert dispatched", "alert_id", a.ID, "email", a.Email, "articles", len(matched))

	return DispatchOutcome{Status: StatusSent}
}

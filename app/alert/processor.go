package alert

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"newsalert/app/database"
)

// Processor runs one batch over all active alerts. Alerts are independent
// units, so evaluation is spread across a small worker pool; one alert's
// failure never aborts the others.
type Processor struct {
	alertRepo  database.AlertRepository
	evaluator  *Evaluator
	dispatcher *Dispatcher
	workers    int
	locks      keyedLocks
}

func NewProcessor(alertRepo database.AlertRepository, evaluator *Evaluator, dispatcher *Dispatcher, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		alertRepo:  alertRepo,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		workers:    workers,
	}
}

// Run evaluates and dispatches every active alert, returning the aggregate
// summary. Only a store-wide outage fails the run itself; per-alert errors
// land in the detail list. Cancellation is honored between alerts: an
// alert's unit of work either completes or never starts.
func (p *Processor) Run(ctx context.Context, lookback time.Duration, now time.Time) (*RunSummary, error) {
	alerts, err := p.alertRepo.GetActiveAlerts(ctx)
	if err != nil {
		return nil, &StoreError{Op: "get_active_alerts", Err: err}
	}

	slog.Info("Processing alerts", "count", len(alerts), "lookback", lookback.String())

	// A store outage surfacing mid-run aborts the rest of the batch;
	// per-alert isolation does not extend to the store itself.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	queue := make(chan database.Alert)
	results := make(chan AlertResult, len(alerts))

	var runErr error
	var runErrOnce sync.Once

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range queue {
				result, err := p.processOne(runCtx, a, lookback, now)
				if err != nil {
					runErrOnce.Do(func() {
						runErr = err
						cancelRun()
					})
					continue
				}
				results <- result
			}
		}()
	}

	for _, a := range alerts {
		select {
		case <-runCtx.Done():
			// Stop feeding; alerts already picked up run to completion.
		case queue <- a:
			continue
		}
		break
	}
	close(queue)

	wg.Wait()
	close(results)

	if runErr != nil {
		return nil, runErr
	}

	summary := &RunSummary{}
	for result := range results {
		summary.Details = append(summary.Details, result)
		switch result.Status {
		case StatusSent:
			summary.Sent++
		case StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}

	slog.Info("Alert run completed",
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (p *Processor) processOne(ctx context.Context, a database.Alert, lookback time.Duration, now time.Time) (AlertResult, error) {
	unlock := p.locks.lock(a.ID)
	defer unlock()

	result, filter, err := p.evaluator.Evaluate(ctx, a, lookback, now)
	if err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return AlertResult{}, err
		}
		var configErr *ConfigurationError
		reason := err.Error()
		if errors.As(err, &configErr) {
			reason = configErr.Reason
		}
		slog.Error("Alert evaluation failed", "alert_id", a.ID, "email", a.Email, "error", err)
		return AlertResult{AlertID: a.ID, Email: a.Email, Status: StatusFailed, Reason: reason}, nil
	}

	switch result.Status {
	case StatusSkippedCadence:
		return AlertResult{AlertID: a.ID, Email: a.Email, Status: StatusSkippedCadence, Reason: "frequency limit not reached"}, nil
	case StatusSkippedNoMatch:
		return AlertResult{AlertID: a.ID, Email: a.Email, Status: StatusSkippedNoMatch}, nil
	}

	outcome := p.dispatcher.Dispatch(ctx, a, *filter, result.Articles, now)

	return AlertResult{
		AlertID: a.ID,
		Email:   a.Email,
		Status:  outcome.Status,
		Reason:  outcome.Reason,
		Count:   len(result.Articles),
	}, nil
}

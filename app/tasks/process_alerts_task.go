package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsalert/app/alert"
)

var _ TaskInterface = (*ProcessAlertsTask)(nil)

type ProcessAlertsTask struct {
	Task
	processor *alert.Processor
	lookback  time.Duration
}

func NewProcessAlertsTask(processor *alert.Processor, lookback time.Duration) *ProcessAlertsTask {
	return &ProcessAlertsTask{
		Task:      NewTask(TaskTypeProcessAlerts, "alerts"),
		processor: processor,
		lookback:  lookback,
	}
}

func (t *ProcessAlertsTask) Execute(ctx context.Context) error {
	summary, err := t.processor.Run(ctx, t.lookback, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("alert processing run failed: %w", err)
	}

	slog.Info("Alert processing completed", "sent", summary.Sent, "skipped", summary.Skipped, "failed", summary.Failed, "duration", t.GetDuration().String())

	return nil
}

package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func newTestScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(),
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}
}

func TestEnqueueTaskAfterStop(t *testing.T) {
	s := newTestScheduler()
	s.Stop()

	// Handlers may still be in flight when shutdown begins. Enqueueing
	// after Stop must return an error, never panic.
	task := NewProcessAlertsTask(nil, time.Hour)
	if err := s.EnqueueTask(task); err == nil {
		t.Error("Expected error when enqueueing after Stop, got nil")
	}
}

func TestEnqueueTaskQueueFull(t *testing.T) {
	s := newTestScheduler()
	defer s.Stop()

	if err := s.EnqueueTask(NewProcessAlertsTask(nil, time.Hour)); err != nil {
		t.Fatalf("Expected first enqueue to succeed, got %v", err)
	}
	if err := s.EnqueueTask(NewProcessAlertsTask(nil, time.Hour)); err == nil {
		t.Error("Expected error when queue is full, got nil")
	}
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"newsalert/app/alert"
	"newsalert/app/cfg"
	"newsalert/app/database"
	"newsalert/app/ingest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sourceCache *ingest.SourceCache
	newsClient  *ingest.NewsAPIClient
	rssFetcher  *ingest.RSSFetcher
	extractor   *ingest.ContentExtractor
	articleRepo database.ArticleRepository
	processor   *alert.Processor

	fetchSchedule   string
	processSchedule string
	lookback        time.Duration
	workerCount     int

	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(sourceCache *ingest.SourceCache, newsClient *ingest.NewsAPIClient,
	rssFetcher *ingest.RSSFetcher, extractor *ingest.ContentExtractor,
	articleRepo database.ArticleRepository, processor *alert.Processor) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sourceCache:     sourceCache,
		newsClient:      newsClient,
		rssFetcher:      rssFetcher,
		extractor:       extractor,
		articleRepo:     articleRepo,
		processor:       processor,
		fetchSchedule:   cfg.FetchSchedule,
		processSchedule: cfg.ProcessSchedule,
		lookback:        time.Duration(cfg.LookbackHours) * time.Hour,
		workerCount:     cfg.WorkerCount,
		cron:            cron.New(),
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() error {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if _, err := s.cron.AddFunc(s.fetchSchedule, s.enqueueFetchTasks); err != nil {
		return fmt.Errorf("invalid fetch schedule %q: %w", s.fetchSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.processSchedule, s.enqueueProcessTask); err != nil {
		return fmt.Errorf("invalid process schedule %q: %w", s.processSchedule, err)
	}

	s.cron.Start()

	// One fetch pass at startup so a fresh deployment has articles before
	// the first cron firing.
	s.enqueueFetchTasks()

	return nil
}

// Stop drains the cron scheduler and the workers. The queue channel is
// never closed: in-flight HTTP handlers may still call EnqueueTask after
// Stop returns, and those calls must fail cleanly instead of panicking.
func (s *Scheduler) Stop() {
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueFetchTasks() {
	sources := s.sourceCache.GetEnabledSources()
	if len(sources) == 0 {
		slog.Debug("No enabled ingestion sources found")
		return
	}

	for _, source := range sources {
		task := NewFetchNewsTask(source, s.newsClient, s.rssFetcher, s.extractor, s.articleRepo)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue FetchNewsTask", "source", source.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueProcessTask() {
	task := NewProcessAlertsTask(s.processor, s.lookback)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue ProcessAlertsTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "name", task.GetName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}

package tasks

// TaskSchedulerInterface is the surface the rest of the application uses to
// drive background processing: start/stop the worker pool and cron entries,
// and enqueue ad-hoc tasks (manual fetch or alert-processing triggers).
type TaskSchedulerInterface interface {
	Start() error
	Stop()
	EnqueueTask(task TaskInterface) error
}

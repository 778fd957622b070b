package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
)

type SchedulerOptions struct {
	Interval    time.Duration
	WorkerCount int
}

type Scheduler struct {
	sourceCache *source.Cache
	sourceRepo  database.SourceRepository
	importer    *Importer
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	retryDelay  func(retryCount int) time.Duration
}

func NewScheduler(sourceCache *source.Cache, sourceRepo database.SourceRepository, importer *Importer, opts SchedulerOptions) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	return &Scheduler{
		sourceCache: sourceCache,
		sourceRepo:  sourceRepo,
		importer:    importer,
		interval:    opts.Interval,
		workerCount: opts.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		retryDelay:  RetryDelay,
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueImports()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueImport queues an import of the named source regardless of its
// schedule.
func (s *Scheduler) EnqueueImport(sourceName string) error {
	config, err := s.sourceCache.GetConfig(sourceName)
	if err != nil {
		return err
	}
	if !config.Settings.Enabled {
		return fmt.Errorf("source '%s' is disabled", sourceName)
	}
	return s.EnqueueTask(NewImportSourceTask(config, s.importer))
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.sourceCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(configs))

	for _, config := range configs {
		if err := s.EnqueueTask(NewSyncSourceTask(config, s.sourceRepo)); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueDueImports() {
	configs := s.sourceCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()
	for _, config := range configs {
		record, err := s.sourceRepo.GetSource(config.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", config.Name, "error", err)
			continue
		}
		if record == nil {
			slog.Warn("Source not found in database, skipping", "source", config.Name)
			continue
		}

		if record.NextFetchAt != nil && record.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", config.Name, "next_fetch_at", record.NextFetchAt)
			continue
		}

		if err := s.EnqueueTask(NewImportSourceTask(config, s.importer)); err != nil {
			slog.Warn("Failed to enqueue ImportSourceTask", "source", config.Name, "error", err)
		}
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

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := s.retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		case <-time.After(delay):
		}

		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}

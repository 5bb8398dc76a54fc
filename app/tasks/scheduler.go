package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tweetbase/app/cfg"
	"tweetbase/app/ingest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sourceCache  *ingest.SourceCache
	dataSources  DataSourceStore
	scraperTasks ScraperTaskStore
	rawData      RawDataStore
	pipeline     TweetIngester
	fetcher      TimelineFetcher
	notifier     Notifier
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(sourceCache *ingest.SourceCache, dataSources DataSourceStore,
	scraperTasks ScraperTaskStore, rawData RawDataStore, pipeline TweetIngester,
	fetcher TimelineFetcher, notifier Notifier) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sourceCache:  sourceCache,
		dataSources:  dataSources,
		scraperTasks: scraperTasks,
		rawData:      rawData,
		pipeline:     pipeline,
		fetcher:      fetcher,
		notifier:     notifier,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
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
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.sourceCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source definitions found")
		return
	}

	slog.Debug("Processing source definitions", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		syncTask := NewSyncSourceTask(sourceConfig.Name, sourceConfig, s.dataSources, s.scraperTasks)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping ScrapeSourceTask", "source", sourceConfig.Name)
			continue
		}

		scrapeTask := NewScrapeSourceTask(sourceConfig.Name, sourceConfig, s.fetcher, s.pipeline, s.rawData, s.scraperTasks, s.notifier, s)
		if err := s.EnqueueTask(scrapeTask); err != nil {
			slog.Warn("Failed to enqueue ScrapeSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.sourceCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source definitions found")
		return
	}

	slog.Debug("Processing enabled source definitions for task scheduling", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		definition, err := s.scraperTasks.FindByDescription(s.ctx, sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get scrape definition from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}
		if definition == nil {
			slog.Warn("Scrape definition not found in database, skipping", "source", sourceConfig.Name)
			continue
		}
		if !definition.Enabled {
			slog.Debug("Scrape definition disabled, skipping", "source", sourceConfig.Name)
			continue
		}

		if !definition.Due(time.Now().UTC()) {
			slog.Debug("Source not due for scraping yet", "source", sourceConfig.Name, "last_run_at", definition.LastRunTime)
			continue
		}

		scrapeTask := NewScrapeSourceTask(sourceConfig.Name, sourceConfig, s.fetcher, s.pipeline, s.rawData, s.scraperTasks, s.notifier, s)
		if err := s.EnqueueTask(scrapeTask); err != nil {
			slog.Warn("Failed to enqueue ScrapeSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

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

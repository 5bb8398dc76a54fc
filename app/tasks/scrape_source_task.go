package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tweetbase/app/ingest"
)

type ScrapeSourceTask struct {
	Task
	SourceConfig *ingest.SourceConfig
	fetcher      TimelineFetcher
	pipeline     TweetIngester
	rawData      RawDataStore
	scraperTasks ScraperTaskStore
	notifier     Notifier
	scheduler    TaskSchedulerInterface
}

func NewScrapeSourceTask(sourceName string, sourceConfig *ingest.SourceConfig, fetcher TimelineFetcher, pipeline TweetIngester,
	rawData RawDataStore, scraperTasks ScraperTaskStore, notifier Notifier, scheduler TaskSchedulerInterface) *ScrapeSourceTask {
	return &ScrapeSourceTask{
		Task:         NewTask(TaskTypeScrapeSource, sourceName),
		SourceConfig: sourceConfig,
		fetcher:      fetcher,
		pipeline:     pipeline,
		rawData:      rawData,
		scraperTasks: scraperTasks,
		notifier:     notifier,
		scheduler:    scheduler,
	}
}

func (t *ScrapeSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	inputs, payloads, err := t.fetcher.Fetch(ctx, t.SourceConfig)
	if err != nil {
		return fmt.Errorf("failed to fetch timeline: %w", err)
	}

	if len(payloads) > 0 {
		if err := t.rawData.InsertBatch(ctx, t.SourceConfig.DataSource.ID, payloads); err != nil {
			return fmt.Errorf("failed to store raw payloads: %w", err)
		}
	}

	// A bad item must not block the rest of the timeline; re-delivery is
	// safe because the pipeline upsert is idempotent
	ingested := 0
	failed := 0
	for _, input := range inputs {
		if _, err := t.pipeline.UpsertTweet(ctx, input); err != nil {
			slog.Warn("Failed to ingest tweet", "source", t.SourceName, "tweet_id", input.TweetID, "error", err)
			failed++
			continue
		}
		ingested++
	}

	if err := t.stampLastRun(ctx); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "ScrapeSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(inputs),
		"ingested", ingested,
		"failed", failed)

	t.enqueueNotification(ingested)

	return nil
}

func (t *ScrapeSourceTask) stampLastRun(ctx context.Context) error {
	definition, err := t.scraperTasks.FindByDescription(ctx, t.SourceConfig.Name)
	if err != nil {
		return fmt.Errorf("failed to look up scrape definition: %w", err)
	}
	if definition == nil {
		slog.Warn("Scrape definition not synced yet, skipping last run stamp", "source", t.SourceName)
		return nil
	}

	if err := t.scraperTasks.UpdateLastRun(ctx, definition.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to stamp last run time: %w", err)
	}

	return nil
}

func (t *ScrapeSourceTask) enqueueNotification(ingested int) {
	if t.notifier == nil || t.scheduler == nil {
		return
	}

	message := fmt.Sprintf("Scraped %s: %d tweets ingested", t.SourceName, ingested)
	notifyTask := NewNotifyTask(t.SourceName, message, t.notifier)
	if err := t.scheduler.EnqueueTask(notifyTask); err != nil {
		slog.Warn("Failed to enqueue NotifyTask", "source", t.SourceName, "error", err)
	}
}

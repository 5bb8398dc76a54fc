package tasks

import (
	"context"
	"time"

	"tweetbase/app/database"
	"tweetbase/app/ingest"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API server to manage background task
// processing.
// Example usage:
//
//	scheduler := NewScheduler(sourceCache, dataSources, scraperTasks, rawData, pipeline, fetcher, notifier)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScrapeSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// TweetIngester runs tweets through the ingestion pipeline.
type TweetIngester interface {
	UpsertTweet(ctx context.Context, input ingest.TweetInput) (int64, error)
}

// TimelineFetcher downloads one source's timeline and maps it to pipeline
// inputs plus raw payloads.
type TimelineFetcher interface {
	Fetch(ctx context.Context, config *ingest.SourceConfig) ([]ingest.TweetInput, []string, error)
}

// DataSourceStore is the data source surface the sync task needs.
type DataSourceStore interface {
	Upsert(ctx context.Context, d database.DataSource) error
}

// ScraperTaskStore is the scrape definition surface the scheduler and its
// tasks need.
type ScraperTaskStore interface {
	FindByDescription(ctx context.Context, description string) (*database.ScraperTask, error)
	Insert(ctx context.Context, t database.ScraperTask) error
	UpdateFields(ctx context.Context, id string, values map[string]any) (int64, error)
	UpdateLastRun(ctx context.Context, id string, at time.Time) error
}

// RawDataStore captures unprocessed source payloads.
type RawDataStore interface {
	InsertBatch(ctx context.Context, dataSourceID string, payloads []string) error
}

// Notifier delivers outbound event messages.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

var _ DataSourceStore = (*database.DataSourceRepository)(nil)
var _ ScraperTaskStore = (*database.ScraperTaskRepository)(nil)
var _ RawDataStore = (*database.RawDataRepository)(nil)
var _ TweetIngester = (*ingest.Pipeline)(nil)
var _ TimelineFetcher = (*ingest.FeedSource)(nil)

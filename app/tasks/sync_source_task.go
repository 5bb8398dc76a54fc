package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tweetbase/app/database"
	"tweetbase/app/ingest"
)

type SyncSourceTask struct {
	Task
	SourceConfig *ingest.SourceConfig
	dataSources  DataSourceStore
	scraperTasks ScraperTaskStore
}

func NewSyncSourceTask(sourceName string, sourceConfig *ingest.SourceConfig, dataSources DataSourceStore, scraperTasks ScraperTaskStore) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSource, sourceName),
		SourceConfig: sourceConfig,
		dataSources:  dataSources,
		scraperTasks: scraperTasks,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.dataSources.Upsert(ctx, database.DataSource{
		ID:   t.SourceConfig.DataSource.ID,
		Name: t.SourceConfig.DataSource.Name,
	})
	if err != nil {
		slog.Error("Task failed", "type", "SyncSource", "source", t.SourceName, "error", err)
		return fmt.Errorf("failed to sync data source: %w", err)
	}

	existing, err := t.scraperTasks.FindByDescription(ctx, t.SourceConfig.Name)
	if err != nil {
		slog.Error("Task failed", "type", "SyncSource", "source", t.SourceName, "error", err)
		return fmt.Errorf("failed to look up scrape definition: %w", err)
	}

	if existing == nil {
		err = t.scraperTasks.Insert(ctx, database.ScraperTask{
			ID:             uuid.NewString(),
			DataSourceID:   t.SourceConfig.DataSource.ID,
			Description:    t.SourceConfig.Name,
			Query:          t.SourceConfig.URL,
			RepeatInterval: t.SourceConfig.Settings.RepeatInterval,
			Enabled:        t.SourceConfig.Settings.Enabled,
			CreatedBy:      "sync",
			CreatedAt:      time.Now().UTC(),
		})
	} else {
		_, err = t.scraperTasks.UpdateFields(ctx, existing.ID, map[string]any{
			"query":           t.SourceConfig.URL,
			"repeat_interval": t.SourceConfig.Settings.RepeatInterval,
			"enabled":         t.SourceConfig.Settings.Enabled,
			"modified_by":     "sync",
		})
	}
	if err != nil {
		slog.Error("Task failed", "type", "SyncSource", "source", t.SourceName, "error", err)
		return fmt.Errorf("failed to sync scrape definition: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}

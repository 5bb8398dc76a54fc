package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tweetbase/app/database"
	"tweetbase/app/ingest"
	"tweetbase/app/tasks"
)

func NewHandler(repos *database.Repos, pipeline PipelineInterface, fetcher tasks.TimelineFetcher,
	sourceCache *ingest.SourceCache, scheduler tasks.TaskSchedulerInterface, notifier tasks.Notifier) *Handler {
	return &Handler{
		repos:       repos,
		pipeline:    pipeline,
		fetcher:     fetcher,
		sourceCache: sourceCache,
		scheduler:   scheduler,
		notifier:    notifier,
	}
}

func (h *Handler) GetTweets(c *gin.Context) {
	filter, opts, err := parseTweetQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tweets, err := h.repos.Tweets.Filter(c.Request.Context(), filter, opts)
	if err != nil {
		slog.Error("Database error", "operation", "filter_tweets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"tweets": toTweetResponses(tweets),
		"total":  len(tweets),
	})
}

func (h *Handler) GetTweetCount(c *gin.Context) {
	filter, _, err := parseTweetQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.repos.Tweets.CountBy(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Database error", "operation", "count_tweets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) GetTweetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tweet id"})
		return
	}

	tweet, err := h.repos.Tweets.Find(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "find_tweet", "tweet_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if tweet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tweet not found"})
		return
	}

	c.JSON(http.StatusOK, toTweetResponse(*tweet))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if tweetCount, err := h.repos.Tweets.Count(c.Request.Context()); err == nil {
		health["tweets"] = tweetCount
	}

	health["loaded_sources"] = h.sourceCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := map[string]interface{}{}

	if count, err := h.repos.Tweets.Count(ctx); err == nil {
		stats["tweets"] = count
	}
	if count, err := h.repos.Authors.Count(ctx); err == nil {
		stats["authors"] = count
	}
	if count, err := h.repos.Hashtags.Count(ctx); err == nil {
		stats["hashtags"] = count
	}
	if count, err := h.repos.Topics.Count(ctx); err == nil {
		stats["topics"] = count
	}
	if count, err := h.repos.RawData.Count(ctx); err == nil {
		stats["raw_payloads"] = count
	}
	if due, err := h.repos.ScraperTasks.FindDue(ctx, time.Now().UTC()); err == nil {
		stats["due_sources"] = len(due)
	}
	stats["loaded_sources"] = h.sourceCache.GetConfigCount()

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIUpsertTweet(c *gin.Context) {
	var req TweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tweet id is required"})
		return
	}
	if req.AuthorID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Author id is required"})
		return
	}
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	if _, err := h.pipeline.UpsertTweet(c.Request.Context(), req.toInput()); err != nil {
		slog.Error("Ingestion error", "operation", "upsert_tweet", "tweet_id", req.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest tweet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tweet_id": req.ID})
}

func (h *Handler) APIPurgeTweets(c *gin.Context) {
	deleted, err := h.pipeline.PurgeTweets(c.Request.Context())
	if err != nil {
		slog.Error("Ingestion error", "operation", "purge_tweets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge tweets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":            sourceConfig.Name,
			"url":             sourceConfig.URL,
			"data_source":     sourceConfig.DataSource.ID,
			"enabled":         sourceConfig.Settings.Enabled,
			"max_items":       sourceConfig.Settings.MaxItems,
			"repeat_interval": (time.Duration(sourceConfig.Settings.RepeatInterval) * time.Second).String(),
			"topics":          sourceConfig.Topics,
		}

		if definition, err := h.repos.ScraperTasks.FindByDescription(c.Request.Context(), sourceConfig.Name); err == nil && definition != nil {
			sourceInfo["definition_id"] = definition.ID
			sourceInfo["definition_enabled"] = definition.Enabled
			sourceInfo["last_run_time"] = definition.LastRunTime
			sourceInfo["due"] = definition.Due(time.Now().UTC())
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIScrapeSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	_, err := h.sourceCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	sourceConfig, err := h.sourceCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceTask(name, sourceConfig, h.repos.DataSources, h.repos.ScraperTasks)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	scrapeTask := tasks.NewScrapeSourceTask(name, sourceConfig, h.fetcher, h.pipeline, h.repos.RawData, h.repos.ScraperTasks, h.notifier, h.scheduler)
	if err := h.scheduler.EnqueueTask(scrapeTask); err != nil {
		slog.Error("Error enqueueing scrape task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue scrape task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Source reloaded and tasks enqueued successfully",
		"source": gin.H{
			"name": name,
			"url":  sourceConfig.URL,
		},
		"tasks": []gin.H{
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
			{
				"id":   scrapeTask.ID,
				"type": scrapeTask.Type,
			},
		},
	})
}

func parseTweetQuery(c *gin.Context) (database.TweetFilter, database.FilterOptions, error) {
	var filter database.TweetFilter
	var opts database.FilterOptions

	if raw := c.Query("author_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, opts, fmt.Errorf("invalid author_id: %s", raw)
		}
		filter.AuthorID = id
	}

	filter.Username = c.Query("username")
	filter.Language = c.Query("language")

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, opts, fmt.Errorf("invalid since timestamp, expected RFC3339: %s", raw)
		}
		filter.Since = since
	}

	if raw := c.Query("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, opts, fmt.Errorf("invalid until timestamp, expected RFC3339: %s", raw)
		}
		filter.Until = until
	}

	if raw := c.Query("hashtags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				filter.Hashtags = append(filter.Hashtags, tag)
			}
		}
	}

	minRaw := c.Query("sentiment_min")
	maxRaw := c.Query("sentiment_max")
	if minRaw != "" || maxRaw != "" {
		scoreRange := database.ScoreRange{Low: -100, High: 100}
		if minRaw != "" {
			low, err := strconv.Atoi(minRaw)
			if err != nil {
				return filter, opts, fmt.Errorf("invalid sentiment_min: %s", minRaw)
			}
			scoreRange.Low = low
		}
		if maxRaw != "" {
			high, err := strconv.Atoi(maxRaw)
			if err != nil {
				return filter, opts, fmt.Errorf("invalid sentiment_max: %s", maxRaw)
			}
			scoreRange.High = high
		}
		filter.Sentiment = &scoreRange
	}

	if raw := c.Query("exclude_content"); raw == "true" || raw == "1" {
		opts.ExcludeContent = true
	}

	return filter, opts, nil
}

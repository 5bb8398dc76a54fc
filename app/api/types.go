package api

import (
	"context"
	"time"

	"tweetbase/app/database"
	"tweetbase/app/ingest"
	"tweetbase/app/tasks"
)

// PipelineInterface is the ingestion surface the handlers need.
type PipelineInterface interface {
	UpsertTweet(ctx context.Context, input ingest.TweetInput) (int64, error)
	PurgeTweets(ctx context.Context) (int64, error)
}

var _ PipelineInterface = (*ingest.Pipeline)(nil)

type Handler struct {
	repos       *database.Repos
	pipeline    PipelineInterface
	fetcher     tasks.TimelineFetcher
	sourceCache *ingest.SourceCache
	scheduler   tasks.TaskSchedulerInterface
	notifier    tasks.Notifier
}

// TweetRequest is the manual ingestion payload. A missing topics field leaves
// existing topic links untouched; an explicit empty list clears them.
type TweetRequest struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"author_id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Content        string    `json:"content"`
	Language       *string   `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
	SentimentScore *int      `json:"sentiment_score"`
	LikeCount      int       `json:"like_count"`
	RetweetCount   int       `json:"retweet_count"`
	ReplyCount     int       `json:"reply_count"`
	Topics         []string  `json:"topics"`
}

func (r TweetRequest) toInput() ingest.TweetInput {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return ingest.TweetInput{
		TweetID:        r.ID,
		AuthorID:       r.AuthorID,
		Username:       r.Username,
		DisplayName:    r.DisplayName,
		Content:        r.Content,
		Language:       r.Language,
		CreatedAt:      createdAt,
		SentimentScore: r.SentimentScore,
		LikeCount:      r.LikeCount,
		RetweetCount:   r.RetweetCount,
		ReplyCount:     r.ReplyCount,
		Topics:         r.Topics,
	}
}

type TweetResponse struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"author_id"`
	Username       string    `json:"username,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"`
	Content        string    `json:"content"`
	Language       *string   `json:"language,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	SentimentScore *int      `json:"sentiment_score,omitempty"`
	LikeCount      int       `json:"like_count"`
	RetweetCount   int       `json:"retweet_count"`
	ReplyCount     int       `json:"reply_count"`
}

func toTweetResponse(t database.Tweet) TweetResponse {
	return TweetResponse{
		ID:             t.ID,
		AuthorID:       t.AuthorID,
		Username:       t.Username,
		DisplayName:    t.DisplayName,
		Content:        t.Content,
		Language:       t.Language,
		CreatedAt:      t.CreatedAt,
		SentimentScore: t.SentimentScore,
		LikeCount:      t.LikeCount,
		RetweetCount:   t.RetweetCount,
		ReplyCount:     t.ReplyCount,
	}
}

func toTweetResponses(tweets []database.Tweet) []TweetResponse {
	responses := make([]TweetResponse, 0, len(tweets))
	for _, t := range tweets {
		responses = append(responses, toTweetResponse(t))
	}
	return responses
}

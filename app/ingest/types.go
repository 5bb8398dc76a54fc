package ingest

import (
	"time"
)

// TweetInput carries one tweet through the ingestion pipeline. Both ids are
// externally assigned and stable across repeated deliveries of the same tweet.
type TweetInput struct {
	TweetID        int64
	AuthorID       int64
	Username       string
	DisplayName    string
	Content        string
	Language       *string
	CreatedAt      time.Time
	SentimentScore *int
	LikeCount      int
	RetweetCount   int
	ReplyCount     int
	Topics         []string // nil leaves existing topic links untouched
}

// Configuration types

type SourceConfig struct {
	Name       string         // Derived from filename (without .yml extension)
	DataSource DataSourceInfo `yaml:"data_source"`
	URL        string         `yaml:"url"`
	Settings   SourceSettings `yaml:"settings"`
	Topics     []string       `yaml:"topics"` // Attached to every tweet from this source
}

type DataSourceInfo struct {
	ID   string `yaml:"id"` // Short code, at most 3 characters
	Name string `yaml:"name"`
}

type SourceSettings struct {
	Enabled        bool `yaml:"enabled"`
	RepeatInterval int  `yaml:"repeat_interval"` // seconds
	MaxItems       int  `yaml:"max_items"`
	Timeout        int  `yaml:"timeout"` // seconds
}

package database

import (
	"time"
)

// Author represents a tweet author record in the database
type Author struct {
	ID          int64
	Username    string
	DisplayName string
	LastUpdated time.Time // Guards conditional upserts; zero value predates any real profile
}

// Tweet represents a tweet record in the database
type Tweet struct {
	ID             int64
	AuthorID       int64
	Content        string
	Language       *string // ISO code, at most 5 characters
	CreatedAt      time.Time
	SentimentScore *int // NULL or -100..100
	LikeCount      int
	RetweetCount   int
	ReplyCount     int

	// Author columns attached by filter queries; empty on plain lookups
	Username    string
	DisplayName string
}

// Hashtag represents a row in the hashtag registry
type Hashtag struct {
	ID       int64
	Tag      string // Stored without the leading '#'
	UseCount int64
}

// Topic represents a row in the topic registry
type Topic struct {
	ID       int64
	Title    string
	UseCount int64
}

// User represents an application account
type User struct {
	ID       string
	Email    string
	Password string // Hashed
}

// DataSource represents a scraping origin, keyed by a short code
type DataSource struct {
	ID   string
	Name string
}

// RawData represents an unprocessed payload captured from a data source
type RawData struct {
	ID           string // UUID
	DataSourceID string
	Data         string // JSON document
	CreatedAt    time.Time
}

// ScraperTask represents a scheduled scrape definition
type ScraperTask struct {
	ID             string // UUID
	DataSourceID   string
	Description    string
	Query          string
	RepeatInterval int // Seconds between runs
	Enabled        bool
	LastRunTime    *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	ModifiedBy     string
	ModifiedAt     *time.Time
}

// Due reports whether the task's repeat interval has elapsed since its last
// run. A task that never ran is always due.
func (t *ScraperTask) Due(now time.Time) bool {
	if t.LastRunTime == nil {
		return true
	}
	return !t.LastRunTime.Add(time.Duration(t.RepeatInterval) * time.Second).After(now)
}

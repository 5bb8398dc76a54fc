package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const timelineFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>alice / @alice</title>
<link>https://nitter.example.com/alice</link>
<description>Twitter feed for @alice</description>
<language>en</language>
<item>
<title>Hello #btc world</title>
<link>https://nitter.example.com/alice/status/1690000000000000001#m</link>
<dc:creator>@alice</dc:creator>
<pubDate>Tue, 07 Mar 2023 10:30:00 GMT</pubDate>
</item>
<item>
<title>Older post about #eth</title>
<link>https://nitter.example.com/bob/statuses/1690000000000000002</link>
<dc:creator>@bob</dc:creator>
<pubDate>Mon, 06 Mar 2023 09:00:00 GMT</pubDate>
</item>
<item>
<title>Pinned profile note</title>
<link>https://nitter.example.com/alice</link>
<dc:creator>@alice</dc:creator>
<pubDate>Sun, 05 Mar 2023 08:00:00 GMT</pubDate>
</item>
<item>
<title>Anonymous retweet</title>
<link>https://nitter.example.com/alice/status/1690000000000000003</link>
<pubDate>Sat, 04 Mar 2023 07:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func fixtureServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func fixtureConfig(url string) *SourceConfig {
	return &SourceConfig{
		Name:       "alice",
		URL:        url,
		DataSource: DataSourceInfo{ID: "twt", Name: "Twitter"},
		Settings:   SourceSettings{Enabled: true, RepeatInterval: 900, MaxItems: 100, Timeout: 5},
		Topics:     []string{"crypto"},
	}
}

func TestFeedSourceFetch(t *testing.T) {
	server := fixtureServer(t, timelineFixture, http.StatusOK)

	source := NewFeedSource(server.Client(), "Tweetbase/1.0")
	inputs, payloads, err := source.Fetch(context.Background(), fixtureConfig(server.URL))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// The profile note has no status id and the anonymous item no author
	if len(inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %d", len(inputs))
	}
	if len(payloads) != 2 {
		t.Fatalf("Expected 2 raw payloads, got %d", len(payloads))
	}

	first := inputs[0]
	if first.TweetID != 1690000000000000001 {
		t.Errorf("Expected tweet id 1690000000000000001, got %d", first.TweetID)
	}
	if first.Username != "alice" {
		t.Errorf("Expected username 'alice', got '%s'", first.Username)
	}
	if first.AuthorID <= 0 {
		t.Errorf("Expected a positive derived author id, got %d", first.AuthorID)
	}
	if first.Content != "Hello #btc world" {
		t.Errorf("Expected item title as content, got '%s'", first.Content)
	}
	if first.Language == nil || *first.Language != "en" {
		t.Errorf("Expected feed language 'en', got %v", first.Language)
	}
	want := time.Date(2023, 3, 7, 10, 30, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(want) {
		t.Errorf("Expected created at %v, got %v", want, first.CreatedAt)
	}
	if len(first.Topics) != 1 || first.Topics[0] != "crypto" {
		t.Errorf("Expected source topics attached, got %v", first.Topics)
	}

	// The alternate /statuses/ link form also parses
	if inputs[1].TweetID != 1690000000000000002 {
		t.Errorf("Expected tweet id 1690000000000000002, got %d", inputs[1].TweetID)
	}
	if inputs[1].Username != "bob" {
		t.Errorf("Expected username 'bob', got '%s'", inputs[1].Username)
	}

	if !strings.Contains(payloads[0], "Hello #btc world") {
		t.Error("Expected raw payload to carry the item title")
	}
}

func TestFeedSourceFetchMaxItems(t *testing.T) {
	server := fixtureServer(t, timelineFixture, http.StatusOK)

	config := fixtureConfig(server.URL)
	config.Settings.MaxItems = 1

	source := NewFeedSource(server.Client(), "Tweetbase/1.0")
	inputs, _, err := source.Fetch(context.Background(), config)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(inputs) != 1 {
		t.Errorf("Expected max items to cap inputs at 1, got %d", len(inputs))
	}
}

func TestFeedSourceFetchHTTPError(t *testing.T) {
	server := fixtureServer(t, "upstream broken", http.StatusInternalServerError)

	source := NewFeedSource(server.Client(), "Tweetbase/1.0")
	_, _, err := source.Fetch(context.Background(), fixtureConfig(server.URL))
	if err == nil {
		t.Fatal("Expected error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
}

func TestFeedSourceFetchUnparseableTimeline(t *testing.T) {
	server := fixtureServer(t, "not a feed at all", http.StatusOK)

	source := NewFeedSource(server.Client(), "Tweetbase/1.0")
	_, _, err := source.Fetch(context.Background(), fixtureConfig(server.URL))
	if err == nil {
		t.Fatal("Expected error for unparseable timeline")
	}
}

func TestAuthorIDForCaseInsensitive(t *testing.T) {
	if authorIDFor("Alice") != authorIDFor("alice") {
		t.Error("Expected the same id regardless of handle casing")
	}
	if authorIDFor("alice") == authorIDFor("bob") {
		t.Error("Expected different handles to derive different ids")
	}
	if authorIDFor("alice") <= 0 {
		t.Errorf("Expected a positive id, got %d", authorIDFor("alice"))
	}
}

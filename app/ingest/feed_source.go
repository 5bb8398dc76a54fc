package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedSource turns an RSS/Atom timeline (Nitter-style, one tweet per item)
// into pipeline inputs plus the raw item payloads for later reprocessing.
type FeedSource struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
}

func NewFeedSource(httpClient *http.Client, userAgent string) *FeedSource {
	return &FeedSource{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

var statusIDPattern = regexp.MustCompile(`/status(?:es)?/(\d+)`)

// Fetch downloads the source's timeline and maps each item onto a TweetInput
// and its raw JSON payload, capped at the source's max items. Items without a
// parseable tweet id or author are skipped.
func (s *FeedSource) Fetch(ctx context.Context, config *SourceConfig) ([]TweetInput, []string, error) {
	data, err := s.download(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse timeline: %w", err)
	}

	var inputs []TweetInput
	var payloads []string
	for _, item := range feed.Items {
		if len(inputs) >= config.Settings.MaxItems {
			break
		}

		input, ok := s.mapItem(item, feed.Language, config.Topics)
		if !ok {
			slog.Debug("Skipping timeline item", "source", config.Name, "link", item.Link)
			continue
		}

		payload, err := json.Marshal(item)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode raw item: %w", err)
		}

		inputs = append(inputs, input)
		payloads = append(payloads, string(payload))
	}

	return inputs, payloads, nil
}

func (s *FeedSource) mapItem(item *gofeed.Item, feedLanguage string, topics []string) (TweetInput, bool) {
	match := statusIDPattern.FindStringSubmatch(item.Link)
	if match == nil {
		return TweetInput{}, false
	}

	tweetID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return TweetInput{}, false
	}

	username := s.extractUsername(item)
	if username == "" {
		return TweetInput{}, false
	}

	content := item.Title
	if content == "" {
		content = item.Description
	}

	createdAt := time.Now().UTC()
	if item.PublishedParsed != nil {
		createdAt = item.PublishedParsed.UTC()
	}

	var language *string
	if feedLanguage != "" {
		language = &feedLanguage
	}

	return TweetInput{
		TweetID:     tweetID,
		AuthorID:    authorIDFor(username),
		Username:    username,
		DisplayName: username,
		Content:     content,
		Language:    language,
		CreatedAt:   createdAt,
		Topics:      topics,
	}, true
}

func (s *FeedSource) extractUsername(item *gofeed.Item) string {
	var name string

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		name = item.Authors[0].Name
	} else if item.Author != nil {
		name = item.Author.Name
	}

	name = strings.TrimSpace(name)
	return strings.TrimPrefix(name, "@")
}

// authorIDFor derives a stable positive id from the username. Timeline feeds
// carry no numeric author id, so the handle anchors the author row; casing
// differences between deliveries must not split one author into two.
func authorIDFor(username string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(username)))
	return int64(h.Sum64() & math.MaxInt64)
}

func (s *FeedSource) download(ctx context.Context, config *SourceConfig) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

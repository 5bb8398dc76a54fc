package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var tweetDescriptor = EntityDescriptor[Tweet, int64]{
	Table: "tweet",
	IDCol: "id",
	Columns: []string{
		"id", "author_id", "content", "language", "created_at",
		"sentiment_score", "like_count", "retweet_count", "reply_count",
	},
	Scan: func(row Scanner) (Tweet, error) {
		var t Tweet
		err := row.Scan(&t.ID, &t.AuthorID, &t.Content, &t.Language, &t.CreatedAt,
			&t.SentimentScore, &t.LikeCount, &t.RetweetCount, &t.ReplyCount)
		return t, err
	},
	Values: func(t Tweet) map[string]any {
		return map[string]any{
			"id":              t.ID,
			"author_id":       t.AuthorID,
			"content":         t.Content,
			"language":        t.Language,
			"created_at":      t.CreatedAt.UTC(),
			"sentiment_score": t.SentimentScore,
			"like_count":      t.LikeCount,
			"retweet_count":   t.RetweetCount,
			"reply_count":     t.ReplyCount,
		}
	},
}

// TweetRepository handles database operations for tweets
type TweetRepository struct {
	*CRUD[Tweet, int64]
	db DBTX
}

func NewTweetRepository(db DBTX) *TweetRepository {
	return &TweetRepository{CRUD: NewCRUD(db, tweetDescriptor), db: db}
}

// Upsert inserts the tweet or, when the id already exists, overwrites every
// mutable column with the incoming values. The original author_id is kept.
// Returns the number of affected rows.
func (r *TweetRepository) Upsert(ctx context.Context, t Tweet) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tweet (id, author_id, content, language, created_at, sentiment_score, like_count, retweet_count, reply_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			content = excluded.content,
			language = excluded.language,
			created_at = excluded.created_at,
			sentiment_score = excluded.sentiment_score,
			like_count = excluded.like_count,
			retweet_count = excluded.retweet_count,
			reply_count = excluded.reply_count
	`, t.ID, t.AuthorID, t.Content, t.Language, t.CreatedAt.UTC(),
		t.SentimentScore, t.LikeCount, t.RetweetCount, t.ReplyCount)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tweet: %w", err)
	}

	return rowsAffected(result, "tweet")
}

// Filter returns the tweets matching the given criteria, newest first, with
// the author's username and display name attached. Hashtag criteria join the
// link tables and deduplicate, so a tweet carrying several matching tags
// still appears once.
func (r *TweetRepository) Filter(ctx context.Context, filter TweetFilter, opts FilterOptions) ([]Tweet, error) {
	columns := []string{
		"tweet.id", "tweet.author_id", "tweet.content", "tweet.language",
		"tweet.created_at", "tweet.sentiment_score", "tweet.like_count",
		"tweet.retweet_count", "tweet.reply_count",
		"author.username", "author.display_name",
	}
	if opts.ExcludeContent {
		columns[2] = "'' AS content"
	}

	builder := sq.Select(columns...).
		From("tweet").
		Join("author ON author.id = tweet.author_id")
	if filter.needsHashtagJoin() {
		builder = builder.
			Join("tweet_hashtag ON tweet_hashtag.tweet_id = tweet.id").
			Join("hashtag ON hashtag.id = tweet_hashtag.hashtag_id").
			Distinct()
	}
	for _, p := range filter.predicates() {
		builder = builder.Where(p)
	}
	builder = builder.OrderBy("tweet.created_at DESC", "tweet.id DESC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tweet filter: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter tweets: %w", err)
	}
	defer rows.Close()

	var tweets []Tweet
	for rows.Next() {
		var t Tweet
		err := rows.Scan(&t.ID, &t.AuthorID, &t.Content, &t.Language, &t.CreatedAt,
			&t.SentimentScore, &t.LikeCount, &t.RetweetCount, &t.ReplyCount,
			&t.Username, &t.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan filtered tweet: %w", err)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filtered tweets: %w", err)
	}

	return tweets, nil
}

// CountBy returns the number of tweets matching the given criteria. The same
// joins as Filter apply, counting distinct tweets when hashtag criteria are
// present.
func (r *TweetRepository) CountBy(ctx context.Context, filter TweetFilter) (int64, error) {
	countExpr := "COUNT(*)"
	if filter.needsHashtagJoin() {
		countExpr = "COUNT(DISTINCT tweet.id)"
	}

	builder := sq.Select(countExpr).
		From("tweet").
		Join("author ON author.id = tweet.author_id")
	if filter.needsHashtagJoin() {
		builder = builder.
			Join("tweet_hashtag ON tweet_hashtag.tweet_id = tweet.id").
			Join("hashtag ON hashtag.id = tweet_hashtag.hashtag_id")
	}
	for _, p := range filter.predicates() {
		builder = builder.Where(p)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build tweet count: %w", err)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tweets: %w", err)
	}

	return count, nil
}

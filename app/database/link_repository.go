package database

import (
	"context"
	"fmt"
)

// TweetHashtagRepository manages the tweet to hashtag link table
type TweetHashtagRepository struct {
	db DBTX
}

func NewTweetHashtagRepository(db DBTX) *TweetHashtagRepository {
	return &TweetHashtagRepository{db: db}
}

// ReplaceForTweet removes every hashtag link of the tweet and inserts one
// row per given id, leaving exactly the given set regardless of prior state.
// Run it inside the transaction that produced the ids.
func (r *TweetHashtagRepository) ReplaceForTweet(ctx context.Context, tweetID int64, hashtagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tweet_hashtag WHERE tweet_id = ?`, tweetID); err != nil {
		return fmt.Errorf("failed to clear hashtag links: %w", err)
	}

	for _, hashtagID := range hashtagIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO tweet_hashtag (tweet_id, hashtag_id) VALUES (?, ?)
		`, tweetID, hashtagID)
		if err != nil {
			return fmt.Errorf("failed to link hashtag %d: %w", hashtagID, err)
		}
	}

	return nil
}

// ForTweet returns the hashtags linked to the tweet.
func (r *TweetHashtagRepository) ForTweet(ctx context.Context, tweetID int64) ([]Hashtag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hashtag.id, hashtag.tag, hashtag.use_count
		FROM hashtag
		JOIN tweet_hashtag ON tweet_hashtag.hashtag_id = hashtag.id
		WHERE tweet_hashtag.tweet_id = ?
		ORDER BY hashtag.tag
	`, tweetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tweet hashtags: %w", err)
	}
	defer rows.Close()

	var hashtags []Hashtag
	for rows.Next() {
		var h Hashtag
		if err := rows.Scan(&h.ID, &h.Tag, &h.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan tweet hashtag: %w", err)
		}
		hashtags = append(hashtags, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tweet hashtags: %w", err)
	}

	return hashtags, nil
}

// TweetTopicRepository manages the ordered tweet to topic link table
type TweetTopicRepository struct {
	db DBTX
}

func NewTweetTopicRepository(db DBTX) *TweetTopicRepository {
	return &TweetTopicRepository{db: db}
}

// ReplaceForTweet removes every topic link of the tweet and inserts one row
// per given id, recording the slice position as sort_order so the caller's
// ordering survives storage.
func (r *TweetTopicRepository) ReplaceForTweet(ctx context.Context, tweetID int64, topicIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tweet_topic WHERE tweet_id = ?`, tweetID); err != nil {
		return fmt.Errorf("failed to clear topic links: %w", err)
	}

	for i, topicID := range topicIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO tweet_topic (tweet_id, topic_id, sort_order) VALUES (?, ?, ?)
		`, tweetID, topicID, i)
		if err != nil {
			return fmt.Errorf("failed to link topic %d: %w", topicID, err)
		}
	}

	return nil
}

// ForTweet returns the topics linked to the tweet in stored order.
func (r *TweetTopicRepository) ForTweet(ctx context.Context, tweetID int64) ([]Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT topic.id, topic.title, topic.use_count
		FROM topic
		JOIN tweet_topic ON tweet_topic.topic_id = topic.id
		WHERE tweet_topic.tweet_id = ?
		ORDER BY tweet_topic.sort_order
	`, tweetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tweet topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan tweet topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tweet topics: %w", err)
	}

	return topics, nil
}

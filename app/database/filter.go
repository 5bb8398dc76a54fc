package database

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ScoreRange bounds sentiment_score inclusively on both ends.
type ScoreRange struct {
	Low  int
	High int
}

// TweetFilter describes optional tweet query criteria. Zero-valued fields
// contribute nothing; present fields are AND-combined. Hashtag criteria pull
// in the link tables, every other criterion resolves on tweet or author
// columns alone.
type TweetFilter struct {
	AuthorID  int64
	Username  string
	Since     time.Time // Inclusive
	Until     time.Time // Inclusive
	Hashtags  []string  // Tweet matches when linked to any of these tags
	Sentiment *ScoreRange
	Language  string
}

// FilterOptions tunes how filtered tweets are materialized.
type FilterOptions struct {
	// ExcludeContent skips loading the content column when the text payload
	// is not needed.
	ExcludeContent bool
}

func (f TweetFilter) predicates() []sq.Sqlizer {
	var preds []sq.Sqlizer

	if f.AuthorID != 0 {
		preds = append(preds, sq.Eq{"tweet.author_id": f.AuthorID})
	}
	if f.Username != "" {
		preds = append(preds, sq.Eq{"author.username": f.Username})
	}
	if !f.Since.IsZero() {
		preds = append(preds, sq.GtOrEq{"tweet.created_at": f.Since.UTC()})
	}
	if !f.Until.IsZero() {
		preds = append(preds, sq.LtOrEq{"tweet.created_at": f.Until.UTC()})
	}
	if len(f.Hashtags) > 0 {
		tags := make([]string, len(f.Hashtags))
		for i, tag := range f.Hashtags {
			tags[i] = normalizeTag(tag)
		}
		preds = append(preds, sq.Eq{"hashtag.tag": tags})
	}
	if f.Sentiment != nil {
		preds = append(preds,
			sq.GtOrEq{"tweet.sentiment_score": f.Sentiment.Low},
			sq.LtOrEq{"tweet.sentiment_score": f.Sentiment.High})
	}
	if f.Language != "" {
		preds = append(preds, sq.Eq{"tweet.language": f.Language})
	}

	return preds
}

func (f TweetFilter) needsHashtagJoin() bool {
	return len(f.Hashtags) > 0
}

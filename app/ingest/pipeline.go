package ingest

import (
	"context"

	"tweetbase/app/database"
)

// Pipeline runs the ingestion workflow: normalize a tweet, upsert its author
// and row, and rebuild its tag links, all inside one transaction.
type Pipeline struct {
	uow *database.UnitOfWork
}

func NewPipeline(uow *database.UnitOfWork) *Pipeline {
	return &Pipeline{uow: uow}
}

// UpsertTweet stores the tweet together with its author and derived tag links
// as one atomic operation. The author upsert only overwrites profile fields
// when the incoming timestamp is strictly newer; the tweet upsert always
// wins. Hashtag links are rebuilt from the stored text, topic links from the
// caller's list in its order. Returns the tweet upsert's affected row count,
// zero alongside the error when the transaction rolled back.
func (p *Pipeline) UpsertTweet(ctx context.Context, input TweetInput) (int64, error) {
	var affected int64

	err := p.uow.Run(ctx, "upsert tweet", func(r *database.Repos) error {
		content := TruncateRunes(input.Content, MaxContentLength)
		language := input.Language
		if language != nil {
			truncated := TruncateRunes(*language, MaxLanguageLength)
			language = &truncated
		}

		_, err := r.Authors.Upsert(ctx, database.Author{
			ID:          input.AuthorID,
			Username:    input.Username,
			DisplayName: input.DisplayName,
			LastUpdated: input.CreatedAt,
		})
		if err != nil {
			return err
		}

		affected, err = r.Tweets.Upsert(ctx, database.Tweet{
			ID:             input.TweetID,
			AuthorID:       input.AuthorID,
			Content:        content,
			Language:       language,
			CreatedAt:      input.CreatedAt,
			SentimentScore: input.SentimentScore,
			LikeCount:      input.LikeCount,
			RetweetCount:   input.RetweetCount,
			ReplyCount:     input.ReplyCount,
		})
		if err != nil {
			return err
		}

		tags := ExtractHashtags(content)
		hashtagIDs := make([]int64, 0, len(tags))
		for _, tag := range tags {
			id, err := r.Hashtags.GetOrCreate(ctx, tag)
			if err != nil {
				return err
			}
			hashtagIDs = append(hashtagIDs, id)
		}
		if err := r.TweetHashtags.ReplaceForTweet(ctx, input.TweetID, hashtagIDs); err != nil {
			return err
		}

		if input.Topics != nil {
			topicIDs := make([]int64, 0, len(input.Topics))
			seen := make(map[int64]bool)
			for _, title := range input.Topics {
				id, err := r.Topics.GetOrCreate(ctx, TruncateRunes(title, MaxTopicLength))
				if err != nil {
					return err
				}
				if seen[id] {
					continue
				}
				seen[id] = true
				topicIDs = append(topicIDs, id)
			}
			if err := r.TweetTopics.ReplaceForTweet(ctx, input.TweetID, topicIDs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// PurgeTweets deletes every tweet and every hashtag in one transaction. Link
// rows cascade with the tweets, which clears the way for the hashtag delete.
// Topics survive a purge. Returns the number of deleted tweets.
func (p *Pipeline) PurgeTweets(ctx context.Context) (int64, error) {
	var deleted int64

	err := p.uow.Run(ctx, "purge tweets", func(r *database.Repos) error {
		var err error
		deleted, err = r.Tweets.DeleteAll(ctx)
		if err != nil {
			return err
		}

		_, err = r.Hashtags.DeleteAll(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

package database

import (
	"context"
	"testing"
	"time"
)

func TestReplaceHashtagLinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedAuthor(t, db, 1, "alice")
	seedTweet(t, db, 10, 1, "linked", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	hashtags := NewHashtagRepository(db)
	links := NewTweetHashtagRepository(db)

	a, err := hashtags.GetOrCreate(ctx, "a")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	b, err := hashtags.GetOrCreate(ctx, "b")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := links.ReplaceForTweet(ctx, 10, []int64{a, b}); err != nil {
		t.Fatalf("ReplaceForTweet failed: %v", err)
	}

	// Re-link with a smaller set; b must disappear
	if err := links.ReplaceForTweet(ctx, 10, []int64{a}); err != nil {
		t.Fatalf("Second ReplaceForTweet failed: %v", err)
	}

	got, err := links.ForTweet(ctx, 10)
	if err != nil {
		t.Fatalf("ForTweet failed: %v", err)
	}
	if len(got) != 1 || got[0].Tag != "a" {
		t.Fatalf("Expected exactly tag 'a' after replace, got %+v", got)
	}

	// The registry still remembers the unlinked tag
	orphan, err := hashtags.FindByTag(ctx, "b")
	if err != nil {
		t.Fatalf("FindByTag failed: %v", err)
	}
	if orphan == nil {
		t.Error("Expected unlinked tag to stay registered")
	}
}

func TestReplaceHashtagLinksIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedAuthor(t, db, 1, "alice")
	seedTweet(t, db, 10, 1, "linked", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	hashtags := NewHashtagRepository(db)
	links := NewTweetHashtagRepository(db)

	a, err := hashtags.GetOrCreate(ctx, "a")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := links.ReplaceForTweet(ctx, 10, []int64{a}); err != nil {
			t.Fatalf("ReplaceForTweet round %d failed: %v", i, err)
		}
	}

	got, err := links.ForTweet(ctx, 10)
	if err != nil {
		t.Fatalf("ForTweet failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected a single link after repeats, got %d", len(got))
	}
}

func TestReplaceTopicLinksKeepsOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedAuthor(t, db, 1, "alice")
	seedTweet(t, db, 10, 1, "topical", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	topics := NewTopicRepository(db)
	links := NewTweetTopicRepository(db)

	var ids []int64
	for _, title := range []string{"zeta", "alpha", "mid"} {
		id, err := topics.GetOrCreate(ctx, title)
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		ids = append(ids, id)
	}

	if err := links.ReplaceForTweet(ctx, 10, ids); err != nil {
		t.Fatalf("ReplaceForTweet failed: %v", err)
	}

	got, err := links.ForTweet(ctx, 10)
	if err != nil {
		t.Fatalf("ForTweet failed: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d topics, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("Expected topic %d to be '%s', got '%s'", i, title, got[i].Title)
		}
	}
}

func TestTweetDeleteCascadesLinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedAuthor(t, db, 1, "alice")
	seedTweet(t, db, 10, 1, "doomed", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	hashtags := NewHashtagRepository(db)
	links := NewTweetHashtagRepository(db)

	id, err := hashtags.GetOrCreate(ctx, "gone")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := links.ReplaceForTweet(ctx, 10, []int64{id}); err != nil {
		t.Fatalf("ReplaceForTweet failed: %v", err)
	}

	if _, err := NewTweetRepository(db).Delete(ctx, 10); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := links.ForTweet(ctx, 10)
	if err != nil {
		t.Fatalf("ForTweet failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected links to cascade away with the tweet, got %+v", got)
	}
}

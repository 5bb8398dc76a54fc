package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// Repos bundles every repository bound to a single DBTX. The unit of work
// hands one to each operation; callers must not retain it past the call.
type Repos struct {
	Authors       *AuthorRepository
	Tweets        *TweetRepository
	Hashtags      *HashtagRepository
	Topics        *TopicRepository
	TweetHashtags *TweetHashtagRepository
	TweetTopics   *TweetTopicRepository
	Users         *UserRepository
	DataSources   *DataSourceRepository
	RawData       *RawDataRepository
	ScraperTasks  *ScraperTaskRepository
}

// NewRepos builds the repository set over db, which is either the pool or an
// open transaction.
func NewRepos(db DBTX) *Repos {
	return &Repos{
		Authors:       NewAuthorRepository(db),
		Tweets:        NewTweetRepository(db),
		Hashtags:      NewHashtagRepository(db),
		Topics:        NewTopicRepository(db),
		TweetHashtags: NewTweetHashtagRepository(db),
		TweetTopics:   NewTweetTopicRepository(db),
		Users:         NewUserRepository(db),
		DataSources:   NewDataSourceRepository(db),
		RawData:       NewRawDataRepository(db),
		ScraperTasks:  NewScraperTaskRepository(db),
	}
}

// UnitOfWork executes multi-statement operations inside one transaction.
type UnitOfWork struct {
	db *DB
}

func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Run opens a transaction, hands fn a repository set bound to it, commits on
// nil return and rolls back otherwise. The deferred rollback also fires on
// panic, so the connection always returns to the pool. Failures come back as
// *PersistenceError carrying op; the cleanup path never replaces fn's result.
func (u *UnitOfWork) Run(ctx context.Context, op string, fn func(*Repos) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("Transaction rollback failed", "op", op, "error", err)
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return &PersistenceError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	return nil
}

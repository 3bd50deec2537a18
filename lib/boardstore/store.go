// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"errors"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/sqlitepool"
)

// Sentinel errors returned by store methods. Callers match with
// errors.Is; the wrapped text carries the specifics.
var (
	// ErrNotFound: the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the acting user may not perform this mutation.
	// Returned for guests on any write and for non-owners editing or
	// deleting someone else's post or comment.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials: unknown username or wrong password.
	// Deliberately the same error for both, so sign-in failures do
	// not reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled: the account exists but has been deactivated.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrConflict: a uniqueness rule was violated (duplicate username,
	// duplicate category slug) or a delete would orphan rows.
	ErrConflict = errors.New("conflict")
)

// Store manages SQLite storage for the board. Safe for concurrent
// use; each method borrows a pooled connection for its duration.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Config holds the parameters for opening a board store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. Use ":memory:" with PoolSize 1
	// for tests.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to
	// 4 if zero or negative.
	PoolSize int

	// Clock provides timestamps for created/updated columns.
	Clock clock.Clock

	// Logger receives operational messages.
	Logger *slog.Logger
}

// schema is the complete database schema, applied to every connection
// with IF NOT EXISTS guards. Categories, posts, comments, and
// bookmarks cascade so that removing a post cleans up everything
// hanging off it.
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		password_hash TEXT,
		active        INTEGER NOT NULL DEFAULT 1,
		created_at    INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS categories (
		id       INTEGER PRIMARY KEY,
		slug     TEXT NOT NULL UNIQUE,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS posts (
		id          INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		author_id   INTEGER NOT NULL REFERENCES users(id),
		title       TEXT NOT NULL,
		body        TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id, id);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id  INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tag      TEXT NOT NULL,
		PRIMARY KEY (post_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);

	CREATE TABLE IF NOT EXISTS comments (
		id         INTEGER PRIMARY KEY,
		post_id    INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id  INTEGER NOT NULL REFERENCES users(id),
		body       TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, id);

	CREATE TABLE IF NOT EXISTS bookmarks (
		user_id    INTEGER NOT NULL REFERENCES users(id),
		post_id    INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, post_id)
	);
`

// Open creates a new board store backed by SQLite. The database file
// and schema are created if they do not exist.
func Open(cfg Config) (*Store, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("board store: Clock is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: %w", err)
	}

	return &Store{
		pool:   pool,
		clock:  cfg.Clock,
		logger: logger,
	}, nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

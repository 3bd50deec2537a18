// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// defaultPoolSize suits the board's access pattern: one interactive
// client issuing short queries, with the occasional admin command
// touching the same file from another process. SQLite serializes
// writes regardless, so extra connections only help concurrent reads.
const defaultPoolSize = 4

// pragmas applied to every connection before it is handed out.
//
// WAL keeps the TUI's reads from blocking while an admin command
// writes from a second process. busy_timeout covers that same
// cross-process window: a short admin write retries instead of
// surfacing SQLITE_BUSY to the user. foreign_keys must be ON because
// the schema leans on ON DELETE CASCADE from posts to comments, tags,
// and bookmarks.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA temp_store=MEMORY",
}

// Config holds the parameters for opening a connection pool. Path is
// required; everything else defaults.
type Config struct {
	// Path is the SQLite database file. The parent directory must
	// exist; the file is created on first open. ":memory:" works for
	// tests, but only with PoolSize 1 since each in-memory connection
	// is its own database.
	Path string

	// PoolSize is the number of connections. Zero or negative means
	// the package default.
	PoolSize int

	// Logger receives open/close messages. Nil means discard.
	Logger *slog.Logger

	// OnConnect runs once per connection after the standard pragmas,
	// for schema creation and any extra per-connection setup. An
	// error discards the connection and surfaces from Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is a fixed-size SQLite connection pool with the pragmas the
// board database relies on. It is safe for concurrent use; individual
// connections are not. Each goroutine takes its own connection and
// puts it back when done.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are initialized lazily on first
// Take. The caller owns the pool and must Close it.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.OnConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)

	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is free or ctx is
// cancelled. Pair every Take with a deferred Put.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Nil is a no-op. The caller
// must not touch the connection afterwards.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close closes every connection, blocking until all borrowed ones are
// returned. Take fails after Close.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close error", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}
	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("sqlitepool: OnConnect: %w", err)
		}
	}
	return nil
}

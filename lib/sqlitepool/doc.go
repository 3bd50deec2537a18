// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a Telboard-standard SQLite connection pool.
//
// All of Telboard's persistent state — users, categories, posts,
// comments, bookmarks — lives in one SQLite database accessed through
// this package. It wraps zombiezen.com/go/sqlite with production-ready
// defaults: WAL journal mode, NORMAL synchronous for process-crash
// durability without fsync-per-commit overhead, and a busy timeout so
// an admin command writing from a second process retries instead of
// failing.
//
// The pool is built on zombiezen's sqlitex.Pool, which manages a
// fixed-size set of connections. Callers [Pool.Take] a connection,
// perform work, and [Pool.Put] it back. Connections are NOT safe for
// concurrent use — each goroutine must hold its own connection for the
// duration of its work.
//
// # Pragmas
//
// Every connection in the pool is initialized with these pragmas:
//
//   - journal_mode=WAL: write-ahead logging for concurrent readers and
//     a single writer. Reads never block writes; writes never block
//     reads.
//   - synchronous=NORMAL: transactions survive process crashes. Not
//     durable across OS crashes or power failure — acceptable for a
//     board whose operator takes regular backups through the admin
//     tooling.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock instead
//     of returning SQLITE_BUSY immediately.
//   - foreign_keys=ON: comments and bookmarks reference posts, posts
//     reference categories. Cascading deletes keep the board
//     consistent when an admin removes a post.
//   - temp_store=MEMORY: temporary tables and indexes in memory.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:     "/var/telboard/board.db",
//	    PoolSize: 8,
//	    Logger:   logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        // Create tables, register functions, etc.
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
//
// # Design
//
// This package is intentionally thin: it applies standard pragmas and
// exposes the underlying zombiezen types directly. There is no attempt
// to abstract away SQLite's connection model or invent a query builder.
// The board store writes SQL, uses sqlitex.Execute for cached
// statements, and manages transactions with
// sqlitex.ImmediateTransaction. The goal is a shared foundation (one
// dependency, one set of pragmas, one pool pattern) without an
// abstraction layer that fights SQLite's strengths.
package sqlitepool

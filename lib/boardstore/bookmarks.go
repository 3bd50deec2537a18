// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telboard/telboard/lib/schema/board"
)

// Bookmarks returns the set of post IDs the user has bookmarked.
func (s *Store) Bookmarks(ctx context.Context, userID int64) (map[int64]bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: bookmarks: %w", err)
	}
	defer s.pool.Put(conn)

	bookmarked := make(map[int64]bool)
	err = sqlitex.Execute(conn, "SELECT post_id FROM bookmarks WHERE user_id = ?", &sqlitex.ExecOptions{
		Args: []any{userID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			bookmarked[stmt.ColumnInt64(0)] = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: bookmarks: %w", err)
	}
	return bookmarked, nil
}

// ToggleBookmark flips a post's bookmark state for the acting user
// and reports the new state: true when the post is now bookmarked.
// The read-check-write runs in one transaction, so two toggles racing
// from the same account resolve to one consistent state.
func (s *Store) ToggleBookmark(ctx context.Context, actor board.User, postID int64) (bool, error) {
	if err := assertWriter(actor); err != nil {
		return false, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("board store: toggle bookmark: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, fmt.Errorf("board store: toggle bookmark: %w", err)
	}
	defer endTransaction(&err)

	if err = postExists(conn, postID); err != nil {
		return false, err
	}

	var exists bool
	err = sqlitex.Execute(conn, "SELECT 1 FROM bookmarks WHERE user_id = ? AND post_id = ?", &sqlitex.ExecOptions{
		Args: []any{actor.ID, postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("board store: toggle bookmark: %w", err)
	}

	if exists {
		err = sqlitex.Execute(conn, "DELETE FROM bookmarks WHERE user_id = ? AND post_id = ?", &sqlitex.ExecOptions{
			Args: []any{actor.ID, postID},
		})
		if err != nil {
			return false, fmt.Errorf("board store: toggle bookmark: %w", err)
		}
		return false, nil
	}

	err = sqlitex.Execute(conn, `INSERT INTO bookmarks (user_id, post_id, created_at)
		VALUES (?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{actor.ID, postID, s.clock.Now().Unix()},
	})
	if err != nil {
		return false, fmt.Errorf("board store: toggle bookmark: %w", err)
	}
	return true, nil
}

// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardstore

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telboard/telboard/lib/schema/board"
)

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]board.Comment, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: list comments: %w", err)
	}
	defer s.pool.Put(conn)

	var comments []board.Comment
	err = sqlitex.Execute(conn, `SELECT c.id, c.post_id, c.author_id,
		CASE WHEN u.display_name != '' THEN u.display_name ELSE u.username END,
		c.body, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ? ORDER BY c.id`, &sqlitex.ExecOptions{
		Args: []any{postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			comments = append(comments, board.Comment{
				ID:         stmt.ColumnInt64(0),
				PostID:     stmt.ColumnInt64(1),
				AuthorID:   stmt.ColumnInt64(2),
				AuthorName: stmt.ColumnText(3),
				Body:       stmt.ColumnText(4),
				CreatedAt:  time.Unix(stmt.ColumnInt64(5), 0).UTC(),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: list comments: %w", err)
	}
	return comments, nil
}

// AddComment appends a comment to a post. The post must exist;
// commenting on a just-deleted post returns ErrNotFound rather than
// writing an orphan.
func (s *Store) AddComment(ctx context.Context, actor board.User, postID int64, body string) (board.Comment, error) {
	if err := assertWriter(actor); err != nil {
		return board.Comment{}, err
	}

	comment := board.Comment{
		PostID:     postID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name(),
		Body:       body,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := comment.Validate(); err != nil {
		return board.Comment{}, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.Comment{}, fmt.Errorf("board store: add comment: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return board.Comment{}, fmt.Errorf("board store: add comment: %w", err)
	}
	defer endTransaction(&err)

	if err = postExists(conn, postID); err != nil {
		return board.Comment{}, err
	}

	err = sqlitex.Execute(conn, `INSERT INTO comments (post_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{postID, actor.ID, comment.Body, comment.CreatedAt.Unix()},
	})
	if err != nil {
		return board.Comment{}, fmt.Errorf("board store: add comment: %w", err)
	}

	comment.ID = conn.LastInsertRowID()
	s.logger.Info("comment added", "post", postID, "comment", comment.ID, "author", actor.Username)
	return comment, nil
}

// UpdateComment replaces a comment's body. Only its author or an
// admin may edit; ownership is checked against the stored row, not
// whatever the client claims.
func (s *Store) UpdateComment(ctx context.Context, actor board.User, commentID int64, body string) error {
	if err := assertWriter(actor); err != nil {
		return err
	}
	if body == "" {
		return fmt.Errorf("board store: comment body must not be empty")
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: update comment: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: update comment: %w", err)
	}
	defer endTransaction(&err)

	if err = assertCommentOwner(conn, actor, commentID); err != nil {
		return err
	}

	err = sqlitex.Execute(conn, "UPDATE comments SET body = ? WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{body, commentID},
	})
	if err != nil {
		return fmt.Errorf("board store: update comment: %w", err)
	}

	s.logger.Info("comment updated", "comment", commentID, "by", actor.Username)
	return nil
}

// DeleteComment removes a comment. Only its author or an admin may
// delete; ownership is checked against the stored row.
func (s *Store) DeleteComment(ctx context.Context, actor board.User, commentID int64) error {
	if err := assertWriter(actor); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: delete comment: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: delete comment: %w", err)
	}
	defer endTransaction(&err)

	if err = assertCommentOwner(conn, actor, commentID); err != nil {
		return err
	}

	err = sqlitex.Execute(conn, "DELETE FROM comments WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{commentID},
	})
	if err != nil {
		return fmt.Errorf("board store: delete comment: %w", err)
	}

	s.logger.Info("comment deleted", "comment", commentID, "by", actor.Username)
	return nil
}

// assertCommentOwner verifies the comment exists and that actor is
// its author or an admin.
func assertCommentOwner(conn *sqlite.Conn, actor board.User, commentID int64) error {
	var authorID int64
	var found bool
	err := sqlitex.Execute(conn, "SELECT author_id FROM comments WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{commentID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			authorID = stmt.ColumnInt64(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("board store: comment lookup: %w", err)
	}
	if !found {
		return fmt.Errorf("board store: comment %d: %w", commentID, ErrNotFound)
	}
	if authorID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("board store: comment %d belongs to someone else: %w", commentID, ErrForbidden)
	}
	return nil
}

// postExists verifies a post row is present.
func postExists(conn *sqlite.Conn, postID int64) error {
	var found bool
	err := sqlitex.Execute(conn, "SELECT 1 FROM posts WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("board store: post lookup: %w", err)
	}
	if !found {
		return fmt.Errorf("board store: post %d: %w", postID, ErrNotFound)
	}
	return nil
}

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

// assertWriter rejects mutations from guests and deactivated
// accounts. Every mutating store method calls this even when the UI
// has already hidden the affordance.
func assertWriter(actor board.User) error {
	if actor.IsGuest() {
		return fmt.Errorf("board store: guests are read-only: %w", ErrForbidden)
	}
	if !actor.Active {
		return fmt.Errorf("board store: account %s is deactivated: %w", actor.Username, ErrForbidden)
	}
	return nil
}

// CreatePost writes a new post with its tags. The draft is validated
// again here; the compose form already validated it, but the store
// does not trust callers.
func (s *Store) CreatePost(ctx context.Context, actor board.User, draft board.PostDraft) (board.Post, error) {
	if err := assertWriter(actor); err != nil {
		return board.Post{}, err
	}
	if err := draft.Validate(); err != nil {
		return board.Post{}, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.Post{}, fmt.Errorf("board store: create post: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return board.Post{}, fmt.Errorf("board store: create post: %w", err)
	}
	defer endTransaction(&err)

	if err = categoryExists(conn, draft.CategoryID); err != nil {
		return board.Post{}, err
	}

	now := s.clock.Now()
	err = sqlitex.Execute(conn, `INSERT INTO posts
		(category_id, author_id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{draft.CategoryID, actor.ID, draft.Title, draft.Body, now.Unix(), now.Unix()},
	})
	if err != nil {
		return board.Post{}, fmt.Errorf("board store: create post: %w", err)
	}
	postID := conn.LastInsertRowID()

	if err = writeTags(conn, postID, draft.Tags); err != nil {
		return board.Post{}, err
	}

	s.logger.Info("post created", "post", postID, "author", actor.Username)
	return board.Post{
		ID:         postID,
		CategoryID: draft.CategoryID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name(),
		Title:      draft.Title,
		Body:       draft.Body,
		Tags:       draft.Tags,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// UpdatePost rewrites a post's category, title, body, and tags. Only
// the author or an admin may edit; ownership is checked here against
// the stored row, not against whatever the UI believed.
func (s *Store) UpdatePost(ctx context.Context, actor board.User, postID int64, draft board.PostDraft) error {
	if err := assertWriter(actor); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: update post: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: update post: %w", err)
	}
	defer endTransaction(&err)

	if err = s.assertPostOwner(conn, actor, postID); err != nil {
		return err
	}
	if err = categoryExists(conn, draft.CategoryID); err != nil {
		return err
	}

	err = sqlitex.Execute(conn, `UPDATE posts
		SET category_id = ?, title = ?, body = ?, updated_at = ?
		WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{draft.CategoryID, draft.Title, draft.Body, s.clock.Now().Unix(), postID},
	})
	if err != nil {
		return fmt.Errorf("board store: update post: %w", err)
	}

	err = sqlitex.Execute(conn, "DELETE FROM post_tags WHERE post_id = ?", &sqlitex.ExecOptions{
		Args: []any{postID},
	})
	if err != nil {
		return fmt.Errorf("board store: update post: %w", err)
	}
	if err = writeTags(conn, postID, draft.Tags); err != nil {
		return err
	}

	s.logger.Info("post updated", "post", postID, "by", actor.Username)
	return nil
}

// DeletePost removes a post. Comments, tags, and bookmarks cascade.
// Only the author or an admin may delete.
func (s *Store) DeletePost(ctx context.Context, actor board.User, postID int64) error {
	if err := assertWriter(actor); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: delete post: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: delete post: %w", err)
	}
	defer endTransaction(&err)

	if err = s.assertPostOwner(conn, actor, postID); err != nil {
		return err
	}

	err = sqlitex.Execute(conn, "DELETE FROM posts WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{postID},
	})
	if err != nil {
		return fmt.Errorf("board store: delete post: %w", err)
	}

	s.logger.Info("post deleted", "post", postID, "by", actor.Username)
	return nil
}

// GetPost fetches a single post with its tags and comment count.
func (s *Store) GetPost(ctx context.Context, postID int64) (board.Post, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.Post{}, fmt.Errorf("board store: get post: %w", err)
	}
	defer s.pool.Put(conn)

	var post board.Post
	err = sqlitex.Execute(conn, postSelect+" WHERE p.id = ?", &sqlitex.ExecOptions{
		Args: []any{postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			post = readPost(stmt)
			return nil
		},
	})
	if err != nil {
		return board.Post{}, fmt.Errorf("board store: get post: %w", err)
	}
	if post.ID == 0 {
		return board.Post{}, fmt.Errorf("board store: post %d: %w", postID, ErrNotFound)
	}

	post.Tags, err = readPostTags(conn, postID)
	if err != nil {
		return board.Post{}, err
	}
	return post, nil
}

// ListPosts returns every post, newest first, with derived author
// names, comment counts, and ordered tag lists. The UI filters and
// paginates this list in memory.
func (s *Store) ListPosts(ctx context.Context) ([]board.Post, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: list posts: %w", err)
	}
	defer s.pool.Put(conn)

	var posts []board.Post
	index := make(map[int64]int)
	err = sqlitex.Execute(conn, postSelect+" ORDER BY p.id DESC", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			post := readPost(stmt)
			index[post.ID] = len(posts)
			posts = append(posts, post)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: list posts: %w", err)
	}

	// Attach tags in one pass instead of a query per post.
	err = sqlitex.Execute(conn, `SELECT post_id, tag FROM post_tags
		ORDER BY post_id, position`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if i, ok := index[stmt.ColumnInt64(0)]; ok {
				posts[i].Tags = append(posts[i].Tags, stmt.ColumnText(1))
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: list post tags: %w", err)
	}

	return posts, nil
}

// AllTags returns every distinct tag in listing order: tags of newer
// posts first, each tag reported once at its first appearance. This
// is the corpus the compose form's autocomplete draws from, so recent
// usage floats to the top.
func (s *Store) AllTags(ctx context.Context) ([]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: all tags: %w", err)
	}
	defer s.pool.Put(conn)

	var tags []string
	seen := make(map[string]struct{})
	err = sqlitex.Execute(conn, `SELECT tag FROM post_tags
		ORDER BY post_id DESC, position`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tag := stmt.ColumnText(0)
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: all tags: %w", err)
	}
	return tags, nil
}

// postSelect is the shared SELECT for post rows with derived columns.
// Column order must match readPost.
const postSelect = `SELECT p.id, p.category_id, p.author_id,
	CASE WHEN u.display_name != '' THEN u.display_name ELSE u.username END,
	p.title, p.body, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
	FROM posts p JOIN users u ON u.id = p.author_id`

// readPost decodes the postSelect columns.
func readPost(stmt *sqlite.Stmt) board.Post {
	return board.Post{
		ID:           stmt.ColumnInt64(0),
		CategoryID:   stmt.ColumnInt64(1),
		AuthorID:     stmt.ColumnInt64(2),
		AuthorName:   stmt.ColumnText(3),
		Title:        stmt.ColumnText(4),
		Body:         stmt.ColumnText(5),
		CreatedAt:    time.Unix(stmt.ColumnInt64(6), 0).UTC(),
		UpdatedAt:    time.Unix(stmt.ColumnInt64(7), 0).UTC(),
		CommentCount: stmt.ColumnInt(8),
	}
}

// readPostTags fetches one post's tags in entry order.
func readPostTags(conn *sqlite.Conn, postID int64) ([]string, error) {
	var tags []string
	err := sqlitex.Execute(conn, `SELECT tag FROM post_tags
		WHERE post_id = ? ORDER BY position`, &sqlitex.ExecOptions{
		Args: []any{postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tags = append(tags, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: post tags: %w", err)
	}
	return tags, nil
}

// writeTags inserts a post's tags with their positions. Duplicate
// tags from the author are kept; they are distinct rows at distinct
// positions.
func writeTags(conn *sqlite.Conn, postID int64, tags []string) error {
	for position, tag := range tags {
		err := sqlitex.Execute(conn, `INSERT INTO post_tags (post_id, position, tag)
			VALUES (?, ?, ?)`, &sqlitex.ExecOptions{
			Args: []any{postID, position, tag},
		})
		if err != nil {
			return fmt.Errorf("board store: write tag %q: %w", tag, err)
		}
	}
	return nil
}

// categoryExists verifies a category row is present.
func categoryExists(conn *sqlite.Conn, categoryID int64) error {
	var found bool
	err := sqlitex.Execute(conn, "SELECT 1 FROM categories WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{categoryID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("board store: category lookup: %w", err)
	}
	if !found {
		return fmt.Errorf("board store: category %d: %w", categoryID, ErrNotFound)
	}
	return nil
}

// assertPostOwner verifies the post exists and the actor may modify
// it: author or admin.
func (s *Store) assertPostOwner(conn *sqlite.Conn, actor board.User, postID int64) error {
	var authorID int64
	var found bool
	err := sqlitex.Execute(conn, "SELECT author_id FROM posts WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{postID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			authorID = stmt.ColumnInt64(0)
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
	if authorID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("board store: post %d belongs to someone else: %w", postID, ErrForbidden)
	}
	return nil
}

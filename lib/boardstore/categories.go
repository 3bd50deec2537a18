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

// ListCategories returns all categories in sidebar order: Position
// ascending, ties broken by ID.
func (s *Store) ListCategories(ctx context.Context) ([]board.Category, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("board store: list categories: %w", err)
	}
	defer s.pool.Put(conn)

	var categories []board.Category
	err = sqlitex.Execute(conn, `SELECT id, slug, name, position
		FROM categories ORDER BY position, id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			categories = append(categories, board.Category{
				ID:       stmt.ColumnInt64(0),
				Slug:     stmt.ColumnText(1),
				Name:     stmt.ColumnText(2),
				Position: stmt.ColumnInt(3),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("board store: list categories: %w", err)
	}
	return categories, nil
}

// AddCategory creates a new category. Admin only. Returns ErrConflict
// when the slug is already in use.
func (s *Store) AddCategory(ctx context.Context, actor board.User, category board.Category) (board.Category, error) {
	if !actor.IsAdmin() {
		return board.Category{}, fmt.Errorf("board store: %s may not manage categories: %w", actor.Username, ErrForbidden)
	}
	if err := category.Validate(); err != nil {
		return board.Category{}, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return board.Category{}, fmt.Errorf("board store: add category: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO categories (slug, name, position)
		VALUES (?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{category.Slug, category.Name, category.Position},
	})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return board.Category{}, fmt.Errorf("board store: category slug %q exists: %w", category.Slug, ErrConflict)
		}
		return board.Category{}, fmt.Errorf("board store: add category: %w", err)
	}

	category.ID = conn.LastInsertRowID()
	s.logger.Info("category added", "slug", category.Slug, "by", actor.Username)
	return category, nil
}

// RemoveCategory deletes a category by slug. Admin only. Refuses with
// ErrConflict while the category still has posts — an admin must
// delete or reassign them first, so a typo cannot silently take a
// whole section of the board with it.
func (s *Store) RemoveCategory(ctx context.Context, actor board.User, slug string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("board store: %s may not manage categories: %w", actor.Username, ErrForbidden)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: remove category: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: remove category: %w", err)
	}
	defer endTransaction(&err)

	var categoryID int64
	var postCount int
	err = sqlitex.Execute(conn, `SELECT c.id, COUNT(p.id)
		FROM categories c LEFT JOIN posts p ON p.category_id = c.id
		WHERE c.slug = ? GROUP BY c.id`, &sqlitex.ExecOptions{
		Args: []any{slug},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			categoryID = stmt.ColumnInt64(0)
			postCount = stmt.ColumnInt(1)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("board store: remove category: %w", err)
	}
	if categoryID == 0 {
		return fmt.Errorf("board store: category %q: %w", slug, ErrNotFound)
	}
	if postCount > 0 {
		return fmt.Errorf("board store: category %q still has %d posts: %w", slug, postCount, ErrConflict)
	}

	err = sqlitex.Execute(conn, "DELETE FROM categories WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{categoryID},
	})
	if err != nil {
		return fmt.Errorf("board store: remove category: %w", err)
	}

	s.logger.Info("category removed", "slug", slug, "by", actor.Username)
	return nil
}

// ImportCategories upserts categories by slug: existing slugs get
// their name and position updated, new slugs are inserted. Admin
// only. Used by the admin import command with a YAML category file.
// The whole import is one transaction; a bad entry rolls back all of
// it.
func (s *Store) ImportCategories(ctx context.Context, actor board.User, categories []board.Category) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("board store: %s may not manage categories: %w", actor.Username, ErrForbidden)
	}

	for i, category := range categories {
		if err := category.Validate(); err != nil {
			return fmt.Errorf("board store: import entry %d: %w", i, err)
		}
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("board store: import categories: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("board store: import categories: %w", err)
	}
	defer endTransaction(&err)

	for _, category := range categories {
		err = sqlitex.Execute(conn, `INSERT INTO categories (slug, name, position)
			VALUES (?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name, position = excluded.position`,
			&sqlitex.ExecOptions{
				Args: []any{category.Slug, category.Name, category.Position},
			})
		if err != nil {
			return fmt.Errorf("board store: import category %q: %w", category.Slug, err)
		}
	}

	s.logger.Info("categories imported", "count", len(categories), "by", actor.Username)
	return nil
}

// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"

	"github.com/telboard/telboard/lib/boardstore"
	"github.com/telboard/telboard/lib/schema/board"
)

// The TUI talks to its backend through narrow per-concern interfaces.
// The production implementation of all of them is [boardstore.Store];
// tests substitute stubs that count calls to verify the read-only
// gates never reach the backend.
//
// Every mutating method takes the acting user so the backend can
// enforce the write policy independently of the UI's own gates.

// AuthService signs users in.
type AuthService interface {
	// Authenticate verifies a username and password and returns the
	// account on success.
	Authenticate(ctx context.Context, username, password string) (board.User, error)

	// AuthenticateGuest signs in the shared read-only guest account.
	AuthenticateGuest(ctx context.Context) (board.User, error)
}

// PostService serves the post collection, its categories, and the
// tag vocabulary.
type PostService interface {
	// ListCategories returns all categories in display order.
	ListCategories(ctx context.Context) ([]board.Category, error)

	// ListPosts returns every post, newest first, with tags and
	// comment counts populated.
	ListPosts(ctx context.Context) ([]board.Post, error)

	// GetPost returns a single post by ID.
	GetPost(ctx context.Context, postID int64) (board.Post, error)

	// CreatePost stores a new post authored by actor.
	CreatePost(ctx context.Context, actor board.User, draft board.PostDraft) (board.Post, error)

	// UpdatePost replaces the title, category, body, and tags of an
	// existing post. Only the author or an admin may edit.
	UpdatePost(ctx context.Context, actor board.User, postID int64, draft board.PostDraft) error

	// DeletePost removes a post and its comments and bookmarks.
	// Only the author or an admin may delete.
	DeletePost(ctx context.Context, actor board.User, postID int64) error

	// AllTags returns the known tag vocabulary, newest post first,
	// deduplicated. Feeds the compose form's auto-complete.
	AllTags(ctx context.Context) ([]string, error)
}

// CommentService serves per-post comments.
type CommentService interface {
	// ListComments returns a post's comments, oldest first.
	ListComments(ctx context.Context, postID int64) ([]board.Comment, error)

	// AddComment appends a comment to a post.
	AddComment(ctx context.Context, actor board.User, postID int64, body string) (board.Comment, error)

	// UpdateComment replaces a comment's body. Only the author or an
	// admin may edit.
	UpdateComment(ctx context.Context, actor board.User, commentID int64, body string) error

	// DeleteComment removes a comment. Only the author or an admin
	// may delete.
	DeleteComment(ctx context.Context, actor board.User, commentID int64) error
}

// BookmarkService serves per-user bookmark membership.
type BookmarkService interface {
	// Bookmarks returns the set of post IDs the user has bookmarked.
	Bookmarks(ctx context.Context, userID int64) (map[int64]bool, error)

	// ToggleBookmark flips bookmark membership for (actor, post) and
	// returns the new state.
	ToggleBookmark(ctx context.Context, actor board.User, postID int64) (bool, error)
}

// Service is the full backend surface the board client needs.
type Service interface {
	AuthService
	PostService
	CommentService
	BookmarkService
}

var _ Service = (*boardstore.Store)(nil)

// BookmarkCache is the per-session bookmark membership view. One
// instance is shared by every screen rendering the same user's session
// so the list star and the detail star can never disagree.
type BookmarkCache struct {
	marks map[int64]bool
}

// NewBookmarkCache builds a cache from a freshly loaded membership set.
// A nil map is treated as empty.
func NewBookmarkCache(marks map[int64]bool) *BookmarkCache {
	if marks == nil {
		marks = make(map[int64]bool)
	}
	return &BookmarkCache{marks: marks}
}

// IsBookmarked reports membership for a post ID.
func (c *BookmarkCache) IsBookmarked(postID int64) bool {
	return c.marks[postID]
}

// Set records the result of a toggle without a round trip.
func (c *BookmarkCache) Set(postID int64, bookmarked bool) {
	if bookmarked {
		c.marks[postID] = true
	} else {
		delete(c.marks, postID)
	}
}

// Count returns the number of bookmarked posts.
func (c *BookmarkCache) Count() int {
	return len(c.marks)
}
